package calculator

import (
	"slices"

	"github.com/shopspring/decimal"
)

// SettlementTransaction is one directional debt between two members.
type SettlementTransaction struct {
	From      Member
	To        Member
	Amount    decimal.Decimal // always positive
	Breakdown []ExpenseBreakdown
	IsPaid    bool
}

// MemberSettlementSummary is the target member's position against everyone else.
type MemberSettlementSummary struct {
	Member Member

	// NeedToPay holds debts where Member is the payer, largest first.
	NeedToPay []SettlementTransaction

	// WaitingForPayment holds debts owed to Member, largest first.
	WaitingForPayment []SettlementTransaction
}

// TotalToPay returns the sum of NeedToPay amounts.
func (s MemberSettlementSummary) TotalToPay() decimal.Decimal {
	return sumAmounts(s.NeedToPay)
}

// TotalToReceive returns the sum of WaitingForPayment amounts.
func (s MemberSettlementSummary) TotalToReceive() decimal.Decimal {
	return sumAmounts(s.WaitingForPayment)
}

// Net returns TotalToReceive - TotalToPay.
func (s MemberSettlementSummary) Net() decimal.Decimal {
	return s.TotalToReceive().Sub(s.TotalToPay())
}

func sumAmounts(txs []SettlementTransaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// Summarize turns aggregated counterparty balances into directional
// transaction lists. Balances within Epsilon of zero produce no transaction.
// Equal amounts keep the aggregation order.
func Summarize(target Member, agg Aggregation) MemberSettlementSummary {
	summary := MemberSettlementSummary{
		Member:            target,
		NeedToPay:         []SettlementTransaction{},
		WaitingForPayment: []SettlementTransaction{},
	}

	for _, cb := range agg.Balances {
		if cb.Balance.Abs().LessThan(Epsilon) {
			continue
		}
		breakdown := slices.Clone(cb.Breakdown)
		if cb.Balance.IsNegative() {
			summary.NeedToPay = append(summary.NeedToPay, SettlementTransaction{
				From:      target,
				To:        cb.Counterparty,
				Amount:    cb.Balance.Abs(),
				Breakdown: breakdown,
			})
		} else {
			summary.WaitingForPayment = append(summary.WaitingForPayment, SettlementTransaction{
				From:      cb.Counterparty,
				To:        target,
				Amount:    cb.Balance,
				Breakdown: breakdown,
			})
		}
	}

	byAmountDesc := func(a, b SettlementTransaction) int {
		return b.Amount.Cmp(a.Amount)
	}
	slices.SortStableFunc(summary.NeedToPay, byAmountDesc)
	slices.SortStableFunc(summary.WaitingForPayment, byAmountDesc)

	return summary
}
