package api

import "github.com/shopspring/decimal"

// AuthService

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	Member Member `json:"member"`
	Token  string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Member Member `json:"member"`
	Token  string `json:"token"`
}

type GetCurrentMemberRequest struct{}

type GetCurrentMemberResponse struct {
	Member Member `json:"member"`
}

// GroupService

type CreateGroupRequest struct {
	Name string `json:"name"`
	// MemberIDs of existing members; the caller is always added.
	MemberIDs []string `json:"member_ids"`
	// NewMemberNames creates name-only members and adds them.
	NewMemberNames []string `json:"new_member_names,omitempty"`
}

type CreateGroupResponse struct {
	Group   Group    `json:"group"`
	Members []Member `json:"members"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group   Group    `json:"group"`
	Members []Member `json:"members"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type AddGroupMembersRequest struct {
	GroupID        string   `json:"group_id"`
	MemberIDs      []string `json:"member_ids"`
	NewMemberNames []string `json:"new_member_names,omitempty"`
}

type AddGroupMembersResponse struct {
	Group   Group    `json:"group"`
	Members []Member `json:"members"`
}

// ExpenseService

type CreateExpenseRequest struct {
	Expense Expense `json:"expense"`
}

type CreateExpenseResponse struct {
	Expense Expense     `json:"expense"`
	Split   SplitResult `json:"split"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense Expense     `json:"expense"`
	Split   SplitResult `json:"split"`
}

type ListExpensesRequest struct {
	// GroupID scopes the list; empty lists every expense of the caller.
	GroupID string `json:"group_id,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ResolveSplitRequest struct {
	Total          decimal.Decimal            `json:"total"`
	SplitMethod    string                     `json:"split_method"`
	UnequalAmounts map[string]decimal.Decimal `json:"unequal_amounts,omitempty"`
	Items          []LineItem                 `json:"items,omitempty"`
	Beneficiaries  []string                   `json:"beneficiaries"`
}

type ResolveSplitResponse struct {
	Split SplitResult `json:"split"`
}

// SettlementService

type GetMemberSummaryRequest struct {
	// MemberID is the target member; empty means the caller.
	MemberID string `json:"member_id,omitempty"`
	// GroupID scopes the summary; empty means all expenses.
	GroupID string `json:"group_id,omitempty"`
}

type GetMemberSummaryResponse struct {
	Summary MemberSummary `json:"summary"`
}

type GetGroupSummariesRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupSummariesResponse struct {
	Summaries []MemberSummary `json:"summaries"`
}

type RecordSettlementRequest struct {
	GroupID string `json:"group_id,omitempty"`
	// FromMemberID defaults to the caller.
	FromMemberID string          `json:"from_member_id,omitempty"`
	ToMemberID   string          `json:"to_member_id"`
	Amount       decimal.Decimal `json:"amount"`
	ExpenseIDs   []string        `json:"expense_ids,omitempty"`
	Note         string          `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	// GroupID scopes the list; empty lists the caller's settlements.
	GroupID string `json:"group_id,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type DeleteSettlementResponse struct{}
