package models

import "github.com/shopspring/decimal"

// Split method names as persisted.
const (
	SplitEqual    = "equal"
	SplitUnequal  = "unequal"
	SplitItemized = "itemized"
)

// Expense represents an expense logged by a group member.
// The split payload is stored flattened: UnequalAmounts is only meaningful
// for SplitUnequal and Items only for SplitItemized.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to (optional).
	GroupID string

	// Title is the human-readable name for the expense (e.g., "Dinner").
	Title string

	// Total is the full expense amount.
	Total decimal.Decimal

	// SplitMethod is one of SplitEqual, SplitUnequal, SplitItemized.
	SplitMethod string

	// UnequalAmounts maps beneficiary member ID to a manually assigned amount.
	UnequalAmounts map[string]decimal.Decimal

	// Items are the line items of an itemized expense.
	Items []LineItem

	// Payers are the members who contributed money, in entry order.
	Payers []Payer

	// Beneficiaries are the member IDs who consumed part of the expense.
	Beneficiaries []string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// CreatedBy is the member ID who logged the expense.
	CreatedBy string
}

// Payer is one contribution toward an expense.
type Payer struct {
	MemberID string
	Amount   decimal.Decimal
}

// LineItem is a single line of an itemized expense.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the item label (e.g., "Chips").
	Name string

	// Price is the item amount.
	Price decimal.Decimal

	// AssignedTo is the beneficiary who consumed the item.
	// Empty means nobody is charged for it.
	AssignedTo string
}

// Participants returns payers and beneficiaries without duplicates, payers first.
func (e *Expense) Participants() []string {
	seen := make(map[string]bool, len(e.Payers)+len(e.Beneficiaries))
	var ids []string
	for _, p := range e.Payers {
		if !seen[p.MemberID] {
			seen[p.MemberID] = true
			ids = append(ids, p.MemberID)
		}
	}
	for _, b := range e.Beneficiaries {
		if !seen[b] {
			seen[b] = true
			ids = append(ids, b)
		}
	}
	return ids
}
