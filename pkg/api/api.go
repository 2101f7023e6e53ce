// Package api defines the request and response messages of the settleup
// RPC services. Messages are plain Go structs carried as JSON; amounts are
// decimal strings.
package api

import "github.com/shopspring/decimal"

// Member is a participant's display identity.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Email    string `json:"email,omitempty"`
}

type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	CreatedAt int64    `json:"created_at"`
}

type Payer struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

type LineItem struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	AssignedTo string          `json:"assigned_to,omitempty"`
}

// Expense mirrors the persisted expense. SplitMethod is "equal", "unequal"
// or "itemized"; UnequalAmounts and Items are only read for their method.
type Expense struct {
	ID             string                     `json:"id,omitempty"`
	GroupID        string                     `json:"group_id,omitempty"`
	Title          string                     `json:"title"`
	Total          decimal.Decimal            `json:"total"`
	SplitMethod    string                     `json:"split_method"`
	UnequalAmounts map[string]decimal.Decimal `json:"unequal_amounts,omitempty"`
	Items          []LineItem                 `json:"items,omitempty"`
	Payers         []Payer                    `json:"payers"`
	Beneficiaries  []string                   `json:"beneficiaries"`
	CreatedAt      int64                      `json:"created_at,omitempty"`
	CreatedBy      string                     `json:"created_by,omitempty"`
}

// SplitResult is the resolved allocation of one expense.
type SplitResult struct {
	Shares      map[string]decimal.Decimal `json:"shares"`
	SharesTotal decimal.Decimal            `json:"shares_total"`
	Unallocated decimal.Decimal            `json:"unallocated"`
	Balanced    bool                       `json:"balanced"`
}

type ExpenseBreakdown struct {
	ExpenseID        string          `json:"expense_id"`
	ExpenseTitle     string          `json:"expense_title"`
	ExpenseDate      int64           `json:"expense_date"`
	ItemName         string          `json:"item_name,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	CounterpartyName string          `json:"counterparty_name"`
}

type SettlementTransaction struct {
	From      Member             `json:"from"`
	To        Member             `json:"to"`
	Amount    decimal.Decimal    `json:"amount"`
	Breakdown []ExpenseBreakdown `json:"breakdown"`
	IsPaid    bool               `json:"is_paid"`
}

type MemberSummary struct {
	Member            Member                  `json:"member"`
	NeedToPay         []SettlementTransaction `json:"need_to_pay"`
	WaitingForPayment []SettlementTransaction `json:"waiting_for_payment"`
	TotalToPay        decimal.Decimal         `json:"total_to_pay"`
	TotalToReceive    decimal.Decimal         `json:"total_to_receive"`

	// UnattributedAmount is money lost to counterparties that are not known members.
	UnattributedAmount decimal.Decimal `json:"unattributed_amount"`
}

type Settlement struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id,omitempty"`
	FromMemberID string          `json:"from_member_id"`
	ToMemberID   string          `json:"to_member_id"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseIDs   []string        `json:"expense_ids,omitempty"`
	CreatedAt    int64           `json:"created_at"`
	CreatedBy    string          `json:"created_by"`
	Note         string          `json:"note,omitempty"`
}
