package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// validateExpense checks the request-level invariants of an expense and
// returns its parsed split method. Unbalanced shares are allowed; they are
// reported through SplitResult.Balanced.
func validateExpense(e api.Expense) (calculator.SplitMethod, error) {
	method, err := calculator.ParseSplitMethod(e.SplitMethod)
	if err != nil {
		return 0, invalidArgument("%v", err)
	}
	if strings.TrimSpace(e.Title) == "" {
		return 0, invalidArgument("title required")
	}
	if e.Total.IsNegative() {
		return 0, invalidArgument("total must not be negative")
	}

	if len(e.Payers) == 0 {
		return 0, invalidArgument("at least one payer required")
	}
	paid := decimal.Zero
	for _, p := range e.Payers {
		if p.MemberID == "" {
			return 0, invalidArgument("payer member_id required")
		}
		if p.Amount.IsNegative() {
			return 0, invalidArgument("payer %s amount must not be negative", p.MemberID)
		}
		paid = paid.Add(p.Amount)
	}
	if paid.Sub(e.Total).Abs().GreaterThan(calculator.BalanceTolerance) {
		return 0, invalidArgument("payer amounts %s do not add up to total %s", paid, e.Total)
	}

	if len(e.Beneficiaries) == 0 {
		return 0, invalidArgument("at least one beneficiary required")
	}
	seen := make(map[string]bool, len(e.Beneficiaries))
	for _, b := range e.Beneficiaries {
		if b == "" {
			return 0, invalidArgument("beneficiary member_id required")
		}
		if seen[b] {
			return 0, invalidArgument("duplicate beneficiary %s", b)
		}
		seen[b] = true
	}

	return method, validatePayload(e, method)
}

// validatePayload rejects negative amounts in the payload used by method.
func validatePayload(e api.Expense, method calculator.SplitMethod) error {
	switch method {
	case calculator.Unequal:
		for id, amt := range e.UnequalAmounts {
			if amt.IsNegative() {
				return invalidArgument("amount for %s must not be negative", id)
			}
		}
	case calculator.Itemized:
		for _, item := range e.Items {
			if item.Price.IsNegative() {
				return invalidArgument("price of item %q must not be negative", item.Name)
			}
		}
	}
	return nil
}

// autoAddParticipantsToGroup adds any expense participants not already in the group.
func (s *ExpenseService) autoAddParticipantsToGroup(ctx context.Context, group *models.Group, participants []string) {
	var newMembers []string
	for _, id := range participants {
		if !group.HasMember(id) {
			newMembers = append(newMembers, id)
		}
	}
	if len(newMembers) == 0 {
		return
	}

	if err := s.store.AddGroupMembers(ctx, group.ID, newMembers); err != nil {
		slog.Error("autoAddParticipantsToGroup: failed to add members", "group_id", group.ID, "error", err)
		return
	}
	slog.Info("Auto-added participants to group", "group_id", group.ID, "new_members", newMembers)
}

// CreateExpense validates and stores an expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	in := req.Msg.Expense
	slog.Info("CreateExpense request received",
		"title", in.Title,
		"total", in.Total,
		"split_method", in.SplitMethod,
		"group_id", in.GroupID,
		"payers_count", len(in.Payers),
		"beneficiaries_count", len(in.Beneficiaries),
	)

	method, err := validateExpense(in)
	if err != nil {
		slog.Warn("CreateExpense rejected", "error", err)
		return nil, err
	}

	expense := toModelExpense(in, method)
	expense.Title = strings.TrimSpace(expense.Title)
	expense.CreatedBy = caller

	view := calculator.NewLedgerExpense(expense)
	if err := view.ValidateAttribution(); err != nil {
		slog.Warn("CreateExpense rejected", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	participants := expense.Participants()
	if _, err := requireMembers(ctx, s.store, participants); err != nil {
		return nil, err
	}

	var group *models.Group
	if expense.GroupID != "" {
		if group, err = memberGroup(ctx, s.store, expense.GroupID, caller); err != nil {
			return nil, err
		}
	} else if !slices.Contains(participants, caller) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNoAccess)
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, storeError(err)
	}
	if group != nil {
		s.autoAddParticipantsToGroup(ctx, group, participants)
	}

	split := toSplitResult(calculator.NewLedgerExpense(expense))
	if !split.Balanced {
		slog.Warn("Expense split is unbalanced",
			"expense_id", expense.ID,
			"total", expense.Total,
			"shares_total", split.SharesTotal,
			"unallocated", split.Unallocated,
		)
	}

	slog.Info("Expense created", "expense_id", expense.ID)
	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense),
		Split:   split,
	}), nil
}

// GetExpense retrieves an expense with its resolved split.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.authorizedExpense(ctx, req.Msg.ExpenseID, caller)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetExpenseResponse{
		Expense: toAPIExpense(expense),
		Split:   toSplitResult(calculator.NewLedgerExpense(expense)),
	}), nil
}

// ListExpenses lists a group's expenses, or every expense of the caller.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	var expenses []*models.Expense
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
			return nil, err
		}
		expenses, err = s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	} else {
		expenses, err = s.store.ListExpensesByMember(ctx, caller)
	}
	if err != nil {
		slog.Error("ListExpenses failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}

	slog.Info("ListExpenses successful", "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if _, err := s.authorizedExpense(ctx, req.Msg.ExpenseID, caller); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ResolveSplit previews the shares of an unsaved expense.
func (s *ExpenseService) ResolveSplit(ctx context.Context, req *connect.Request[api.ResolveSplitRequest]) (*connect.Response[api.ResolveSplitResponse], error) {
	slog.Debug("ResolveSplit request received",
		"total", req.Msg.Total,
		"split_method", req.Msg.SplitMethod,
		"beneficiaries_count", len(req.Msg.Beneficiaries),
	)

	method, err := calculator.ParseSplitMethod(req.Msg.SplitMethod)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	preview := api.Expense{
		Total:          req.Msg.Total,
		UnequalAmounts: req.Msg.UnequalAmounts,
		Items:          req.Msg.Items,
		Beneficiaries:  dedupe(req.Msg.Beneficiaries),
	}
	if err := validatePayload(preview, method); err != nil {
		return nil, err
	}

	view := calculator.NewLedgerExpense(toModelExpense(preview, method))
	if err := view.ValidateAttribution(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	return connect.NewResponse(&api.ResolveSplitResponse{Split: toSplitResult(view)}), nil
}

func (s *ExpenseService) authorizedExpense(ctx context.Context, expenseID, caller string) (*models.Expense, error) {
	if expenseID == "" {
		return nil, invalidArgument("expense_id required")
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, storeError(err)
	}
	ok, err := canViewExpense(ctx, s.store, expense, caller)
	if err != nil {
		return nil, storeError(err)
	}
	if !ok {
		return nil, connect.NewError(connect.CodePermissionDenied, errNoAccess)
	}
	return expense, nil
}
