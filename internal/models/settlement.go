package models

import "github.com/shopspring/decimal"

// Settlement represents a recorded payment between two members.
// Settlements do not change computed balances; they only mark the matching
// summary transactions as paid.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to. Empty for settlements
	// recorded outside any group.
	GroupID string

	// FromMemberID is the member who paid (debtor settling up).
	FromMemberID string

	// ToMemberID is the member who received payment (creditor being paid).
	ToMemberID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// ExpenseIDs are the expenses this payment was meant to settle.
	ExpenseIDs []string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the member ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}
