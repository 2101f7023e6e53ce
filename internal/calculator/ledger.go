package calculator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// Expense is the ledger view of one expense: the minimal facts the
// aggregator needs.
type Expense struct {
	ID            string
	Title         string
	Total         decimal.Decimal
	CreatedAt     time.Time
	Method        SplitMethod
	Payload       Payload
	Payers        []Payer
	Beneficiaries []string
}

// Payer is one contribution toward an expense. A member may appear more
// than once; their contributions are summed.
type Payer struct {
	MemberID string
	Amount   decimal.Decimal
}

// NewLedgerExpense adapts a persisted expense record into its ledger view.
// An unknown split method yields an Equal expense with a mismatched payload,
// which resolves to no shares.
func NewLedgerExpense(e *models.Expense) Expense {
	view := Expense{
		ID:            e.ID,
		Title:         e.Title,
		Total:         e.Total,
		CreatedAt:     time.Unix(e.CreatedAt, 0).UTC(),
		Beneficiaries: append([]string(nil), e.Beneficiaries...),
	}

	for _, p := range e.Payers {
		view.Payers = append(view.Payers, Payer{MemberID: p.MemberID, Amount: p.Amount})
	}

	method, err := ParseSplitMethod(e.SplitMethod)
	if err != nil {
		view.Method = method
		view.Payload = ItemizedSplit{}
		return view
	}
	view.Method = method

	switch method {
	case Equal:
		view.Payload = EqualSplit{}
	case Unequal:
		amounts := make(map[string]decimal.Decimal, len(e.UnequalAmounts))
		for id, amt := range e.UnequalAmounts {
			amounts[id] = amt
		}
		view.Payload = UnequalSplit{Amounts: amounts}
	case Itemized:
		items := make([]LineItem, len(e.Items))
		for i, item := range e.Items {
			items[i] = LineItem{Name: item.Name, Price: item.Price, AssignedTo: item.AssignedTo}
		}
		view.Payload = ItemizedSplit{Items: items}
	}
	return view
}

// Shares resolves every beneficiary's share of the expense.
func (e Expense) Shares() Shares {
	return ResolveShares(e.Total, e.Method, e.Payload, e.Beneficiaries)
}

// PaidBy returns the total memberID contributed to the expense.
func (e Expense) PaidBy(memberID string) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range e.Payers {
		if p.MemberID == memberID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// TotalPaid returns the sum of all payer contributions.
func (e Expense) TotalPaid() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range e.Payers {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// IsPayer reports whether memberID contributed to the expense.
func (e Expense) IsPayer(memberID string) bool {
	for _, p := range e.Payers {
		if p.MemberID == memberID {
			return true
		}
	}
	return false
}

// IsBeneficiary reports whether memberID consumed part of the expense.
func (e Expense) IsBeneficiary(memberID string) bool {
	for _, b := range e.Beneficiaries {
		if b == memberID {
			return true
		}
	}
	return false
}

// payerIDs returns distinct payer IDs in first-seen order.
func (e Expense) payerIDs() []string {
	seen := make(map[string]bool, len(e.Payers))
	var ids []string
	for _, p := range e.Payers {
		if !seen[p.MemberID] {
			seen[p.MemberID] = true
			ids = append(ids, p.MemberID)
		}
	}
	return ids
}

// ValidateAttribution checks that every member referenced by the payload is
// a beneficiary of the expense.
func (e Expense) ValidateAttribution() error {
	switch p := e.Payload.(type) {
	case UnequalSplit:
		for id := range p.Amounts {
			if !e.IsBeneficiary(id) {
				return fmt.Errorf("%w: %s", ErrAttributionInconsistent, id)
			}
		}
	case ItemizedSplit:
		for _, item := range p.Items {
			if item.AssignedTo != "" && !e.IsBeneficiary(item.AssignedTo) {
				return fmt.Errorf("%w: %s (item %q)", ErrAttributionInconsistent, item.AssignedTo, item.Name)
			}
		}
	}
	return nil
}
