// Package calculator implements the expense-splitting and settlement-netting
// engine: share resolution per split method, per-counterparty aggregation
// with attributed breakdowns, and directional settlement summaries.
//
// Everything here is a pure computation over in-memory snapshots. Results
// are rebuilt on every call and may be computed concurrently.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultMaxExpenses bounds the expenses processed by one summary when the
// engine is exposed as a network service.
const DefaultMaxExpenses = 10000

// Calculator computes member settlement summaries. The zero value has no
// expense bound.
type Calculator struct {
	MaxExpenses int
}

// New returns a Calculator bounded to maxExpenses per summary.
func New(maxExpenses int) Calculator {
	return Calculator{MaxExpenses: maxExpenses}
}

// Summary computes targetID's settlement summary over expenses. The target
// must be one of members. The aggregation is returned alongside the summary
// so callers can report dropped contributions.
func (c Calculator) Summary(targetID string, expenses []Expense, members []Member) (MemberSettlementSummary, Aggregation, error) {
	if c.MaxExpenses > 0 && len(expenses) > c.MaxExpenses {
		return MemberSettlementSummary{}, Aggregation{}, fmt.Errorf("%w: %d > %d", ErrTooManyExpenses, len(expenses), c.MaxExpenses)
	}

	var target *Member
	for i := range members {
		if members[i].ID == targetID {
			target = &members[i]
			break
		}
	}
	if target == nil {
		return MemberSettlementSummary{}, Aggregation{}, fmt.Errorf("%w: %s", ErrUnknownMember, targetID)
	}

	agg := Aggregate(targetID, expenses, members)
	return Summarize(*target, agg), agg, nil
}

// Settlement is a recorded payment used to flag transactions as paid.
type Settlement struct {
	FromID string
	ToID   string
	Amount decimal.Decimal
}

// OverlayPaid marks transactions as paid when recorded settlements from the
// same debtor to the same creditor add up to at least the transaction amount
// (within BalanceTolerance). Balances themselves are left untouched: a
// summary always reports all-time gross positions.
func OverlayPaid(summary *MemberSettlementSummary, settlements []Settlement) {
	type pair struct{ from, to string }
	paid := make(map[pair]decimal.Decimal)
	for _, s := range settlements {
		k := pair{s.FromID, s.ToID}
		paid[k] = paid[k].Add(s.Amount)
	}

	mark := func(txs []SettlementTransaction) {
		for i := range txs {
			got, ok := paid[pair{txs[i].From.ID, txs[i].To.ID}]
			txs[i].IsPaid = ok && got.Add(BalanceTolerance).GreaterThanOrEqual(txs[i].Amount)
		}
	}
	mark(summary.NeedToPay)
	mark(summary.WaitingForPayment)
}
