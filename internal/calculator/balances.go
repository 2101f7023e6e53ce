package calculator

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is the display identity of a participant.
type Member struct {
	ID       string
	Name     string
	Initials string
}

// PerExpensePosition is the target member's standing on one expense.
// Balance = Paid - Share; positive means the target overpaid.
type PerExpensePosition struct {
	ExpenseID string
	Paid      decimal.Decimal
	Share     decimal.Decimal
	Balance   decimal.Decimal
}

// ExpenseBreakdown explains part of a counterparty balance.
type ExpenseBreakdown struct {
	ExpenseID    string
	ExpenseTitle string
	ExpenseDate  time.Time

	// ItemName is set for entries attributed to one itemized line.
	ItemName string

	// Amount is signed: positive means the counterparty owes the target,
	// negative means the target owes the counterparty.
	Amount decimal.Decimal

	// CounterpartyName is the counterparty's display name at attribution time.
	CounterpartyName string
}

// CounterpartyBalance is the running position between the target member and
// one counterparty. Positive Balance = counterparty owes target.
type CounterpartyBalance struct {
	Counterparty Member
	Balance      decimal.Decimal
	Breakdown    []ExpenseBreakdown
}

// DroppedContribution records an amount that could not be attributed
// because the counterparty is not a known member.
type DroppedContribution struct {
	ExpenseID      string
	CounterpartyID string
	Amount         decimal.Decimal
}

// Aggregation is the result of Aggregate.
type Aggregation struct {
	TargetID string

	// Balances are ordered by the first expense that touched each counterparty.
	Balances []CounterpartyBalance

	// Positions holds one entry per expense the target takes part in.
	Positions []PerExpensePosition

	// Dropped lists contributions lost to unknown counterparties.
	Dropped []DroppedContribution
}

// DroppedTotal returns the absolute amount lost to unknown counterparties.
func (a Aggregation) DroppedTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range a.Dropped {
		sum = sum.Add(d.Amount.Abs())
	}
	return sum
}

// Aggregate computes targetID's signed balance against every other member
// across expenses.
//
// For each expense the target takes part in, the target's balance
// (paid - share) is distributed across counterparties:
//   - underpaid: the shortfall is owed to every other payer in proportion to
//     that payer's contribution to the total paid
//   - overpaid: every other beneficiary who underpaid owes the target their
//     shortfall scaled by the target's contribution to the total paid
//
// This is not a debt-minimisation solve. Counterparties missing from members
// are dropped and reported in Aggregation.Dropped.
func Aggregate(targetID string, expenses []Expense, members []Member) Aggregation {
	a := newAggregator(targetID, members)
	for _, exp := range expenses {
		a.add(exp)
	}
	return a.result()
}

type aggregator struct {
	targetID  string
	members   map[string]Member
	index     map[string]int
	balances  []CounterpartyBalance
	positions []PerExpensePosition
	dropped   []DroppedContribution
}

func newAggregator(targetID string, members []Member) *aggregator {
	byID := make(map[string]Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return &aggregator{
		targetID: targetID,
		members:  byID,
		index:    make(map[string]int),
	}
}

func (a *aggregator) add(exp Expense) {
	target := a.targetID
	if !exp.IsBeneficiary(target) && !exp.IsPayer(target) {
		return
	}

	shares := exp.Shares()
	myShare := shares.Of(target)
	myPaid := exp.PaidBy(target)
	myBalance := myPaid.Sub(myShare)

	a.positions = append(a.positions, PerExpensePosition{
		ExpenseID: exp.ID,
		Paid:      myPaid,
		Share:     myShare,
		Balance:   myBalance,
	})

	totalPaid := exp.TotalPaid()
	if totalPaid.IsZero() {
		return
	}

	switch {
	case myBalance.IsNegative():
		owed := myBalance.Abs()
		for _, payerID := range exp.payerIDs() {
			if payerID == target {
				continue
			}
			portion := owed.Mul(exp.PaidBy(payerID)).Div(totalPaid)
			if portion.IsZero() {
				continue
			}
			a.attribute(exp, payerID, target, portion.Neg(), myShare)
		}

	case myBalance.IsPositive():
		seen := make(map[string]bool, len(exp.Beneficiaries))
		for _, id := range exp.Beneficiaries {
			if id == target || seen[id] {
				continue
			}
			seen[id] = true

			theirShare := shares.Of(id)
			theirBalance := exp.PaidBy(id).Sub(theirShare)
			if !theirBalance.IsNegative() {
				continue
			}
			credit := theirBalance.Abs().Mul(myPaid).Div(totalPaid)
			if credit.IsZero() {
				continue
			}
			a.attribute(exp, id, id, credit, theirShare)
		}
	}
}

// attribute adds a signed amount to the counterparty's balance. debtorID is
// the member whose consumption produced the amount; on itemized expenses the
// amount is spread over that member's items in proportion to their prices.
func (a *aggregator) attribute(exp Expense, counterpartyID, debtorID string, amount, debtorShare decimal.Decimal) {
	member, ok := a.members[counterpartyID]
	if !ok {
		a.dropped = append(a.dropped, DroppedContribution{
			ExpenseID:      exp.ID,
			CounterpartyID: counterpartyID,
			Amount:         amount,
		})
		return
	}

	i, ok := a.index[counterpartyID]
	if !ok {
		i = len(a.balances)
		a.index[counterpartyID] = i
		a.balances = append(a.balances, CounterpartyBalance{
			Counterparty: member,
			Balance:      decimal.Zero,
		})
	}
	cb := &a.balances[i]
	cb.Balance = cb.Balance.Add(amount)

	entry := ExpenseBreakdown{
		ExpenseID:        exp.ID,
		ExpenseTitle:     exp.Title,
		ExpenseDate:      exp.CreatedAt,
		CounterpartyName: member.Name,
	}

	items := itemsFor(exp.Payload, debtorID)
	if exp.Method != Itemized || len(items) == 0 || !debtorShare.IsPositive() {
		entry.Amount = amount
		cb.Breakdown = append(cb.Breakdown, entry)
		return
	}

	for _, item := range items {
		itemEntry := entry
		itemEntry.ItemName = item.Name
		itemEntry.Amount = amount.Mul(item.Price).Div(debtorShare)
		cb.Breakdown = append(cb.Breakdown, itemEntry)
	}
}

func (a *aggregator) result() Aggregation {
	return Aggregation{
		TargetID:  a.targetID,
		Balances:  a.balances,
		Positions: a.positions,
		Dropped:   a.dropped,
	}
}
