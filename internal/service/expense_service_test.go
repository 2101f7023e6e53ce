package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/pkg/api"
)

// newGroup creates a group owned by owner with the given sessions as members.
func (e *testEnv) newGroup(t *testing.T, owner session, name string, others ...session) api.Group {
	t.Helper()
	ids := make([]string, len(others))
	for i, o := range others {
		ids[i] = o.member.ID
	}
	resp, err := e.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{Name: name, MemberIDs: ids}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func (e *testEnv) createExpense(t *testing.T, caller session, expense api.Expense) *api.CreateExpenseResponse {
	t.Helper()
	resp, err := e.expenses.CreateExpense(context.Background(), as(caller, &api.CreateExpenseRequest{Expense: expense}))
	require.NoError(t, err)
	return resp.Msg
}

func dinner(groupID string, payer session, beneficiaries ...session) api.Expense {
	ids := make([]string, len(beneficiaries))
	for i, b := range beneficiaries {
		ids[i] = b.member.ID
	}
	return api.Expense{
		GroupID:       groupID,
		Title:         "Dinner",
		Total:         d("90"),
		SplitMethod:   "equal",
		Payers:        []api.Payer{{MemberID: payer.member.ID, Amount: d("90")}},
		Beneficiaries: ids,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}

func TestCreateExpense_Equal(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	charlie := env.register(t, "Charlie")
	group := env.newGroup(t, alice, "Friends", bob, charlie)

	resp := env.createExpense(t, alice, dinner(group.ID, alice, alice, bob, charlie))

	assert.NotEmpty(t, resp.Expense.ID)
	assert.Equal(t, alice.member.ID, resp.Expense.CreatedBy)
	assert.NotZero(t, resp.Expense.CreatedAt)
	require.Len(t, resp.Split.Shares, 3)
	for _, s := range []session{alice, bob, charlie} {
		assertDecimal(t, "30", resp.Split.Shares[s.member.ID])
	}
	assertDecimal(t, "90", resp.Split.SharesTotal)
	assert.True(t, resp.Split.Balanced)

	got, err := env.expenses.GetExpense(context.Background(), as(bob, &api.GetExpenseRequest{ExpenseID: resp.Expense.ID}))
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Msg.Expense.Title)
	assertDecimal(t, "90", got.Msg.Expense.Total)

	list, err := env.expenses.ListExpenses(context.Background(), as(charlie, &api.ListExpensesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Expenses, 1)
}

func TestCreateExpense_Itemized(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")

	resp := env.createExpense(t, alice, api.Expense{
		Title:       "Snacks",
		Total:       d("55"),
		SplitMethod: "itemized",
		Items: []api.LineItem{
			{Name: "Chips", Price: d("20"), AssignedTo: bob.member.ID},
			{Name: "Soda", Price: d("30"), AssignedTo: alice.member.ID},
			{Name: "Bag", Price: d("5")},
		},
		Payers:        []api.Payer{{MemberID: alice.member.ID, Amount: d("55")}},
		Beneficiaries: []string{alice.member.ID, bob.member.ID},
	})

	assertDecimal(t, "20", resp.Split.Shares[bob.member.ID])
	assertDecimal(t, "30", resp.Split.Shares[alice.member.ID])
	assertDecimal(t, "5", resp.Split.Unallocated)
	assert.False(t, resp.Split.Balanced)
	assert.Len(t, resp.Expense.Items, 3)

	// Outside any group the expense is listed per participant.
	list, err := env.expenses.ListExpenses(context.Background(), as(bob, &api.ListExpensesRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Expenses, 1)
	assert.Equal(t, "itemized", list.Msg.Expenses[0].SplitMethod)
}

func TestCreateExpense_AutoAddsParticipantsToGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	group := env.newGroup(t, alice, "Solo")

	env.createExpense(t, alice, dinner(group.ID, alice, alice, bob))

	got, err := env.groups.GetGroup(context.Background(), as(bob, &api.GetGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Equal(t, []string{alice.member.ID, bob.member.ID}, got.Msg.Group.MemberIDs)
}

func TestCreateExpense_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	eve := env.register(t, "Eve")
	group := env.newGroup(t, bob, "Bob's")

	valid := func() api.Expense { return dinner("", alice, alice, bob) }

	tests := []struct {
		name   string
		mutate func(e *api.Expense)
		code   connect.Code
	}{
		{"empty title", func(e *api.Expense) { e.Title = " " }, connect.CodeInvalidArgument},
		{"negative total", func(e *api.Expense) { e.Total = d("-1") }, connect.CodeInvalidArgument},
		{"unknown split method", func(e *api.Expense) { e.SplitMethod = "percent" }, connect.CodeInvalidArgument},
		{"no payers", func(e *api.Expense) { e.Payers = nil }, connect.CodeInvalidArgument},
		{"payers do not add up", func(e *api.Expense) { e.Payers[0].Amount = d("80") }, connect.CodeInvalidArgument},
		{"no beneficiaries", func(e *api.Expense) { e.Beneficiaries = nil }, connect.CodeInvalidArgument},
		{"duplicate beneficiary", func(e *api.Expense) {
			e.Beneficiaries = append(e.Beneficiaries, alice.member.ID)
		}, connect.CodeInvalidArgument},
		{"unequal amount for non-beneficiary", func(e *api.Expense) {
			e.SplitMethod = "unequal"
			e.UnequalAmounts = map[string]decimal.Decimal{eve.member.ID: d("90")}
		}, connect.CodeInvalidArgument},
		{"negative item price", func(e *api.Expense) {
			e.SplitMethod = "itemized"
			e.Items = []api.LineItem{{Name: "Refund", Price: d("-5"), AssignedTo: bob.member.ID}}
		}, connect.CodeInvalidArgument},
		{"unknown member", func(e *api.Expense) {
			e.Beneficiaries = []string{alice.member.ID, "ghost"}
		}, connect.CodeNotFound},
		{"caller not a participant", func(e *api.Expense) {
			e.Payers = []api.Payer{{MemberID: bob.member.ID, Amount: d("90")}}
			e.Beneficiaries = []string{bob.member.ID, eve.member.ID}
		}, connect.CodePermissionDenied},
		{"caller not in group", func(e *api.Expense) { e.GroupID = group.ID }, connect.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := valid()
			tt.mutate(&expense)
			_, err := env.expenses.CreateExpense(context.Background(), as(alice, &api.CreateExpenseRequest{Expense: expense}))
			assert.Equal(t, tt.code, codeOf(err), "err: %v", err)
		})
	}
}

func TestDeleteExpense(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	eve := env.register(t, "Eve")

	created := env.createExpense(t, alice, dinner("", alice, alice, bob))
	ctx := context.Background()

	_, err := env.expenses.GetExpense(ctx, as(eve, &api.GetExpenseRequest{ExpenseID: created.Expense.ID}))
	assert.Equal(t, connect.CodePermissionDenied, codeOf(err))

	_, err = env.expenses.DeleteExpense(ctx, as(eve, &api.DeleteExpenseRequest{ExpenseID: created.Expense.ID}))
	assert.Equal(t, connect.CodePermissionDenied, codeOf(err))

	_, err = env.expenses.DeleteExpense(ctx, as(bob, &api.DeleteExpenseRequest{ExpenseID: created.Expense.ID}))
	require.NoError(t, err)

	_, err = env.expenses.GetExpense(ctx, as(alice, &api.GetExpenseRequest{ExpenseID: created.Expense.ID}))
	assert.Equal(t, connect.CodeNotFound, codeOf(err))
}

func TestResolveSplit(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")

	tests := []struct {
		name        string
		req         *api.ResolveSplitRequest
		shares      map[string]string
		unallocated string
		balanced    bool
	}{
		{
			name:     "equal",
			req:      &api.ResolveSplitRequest{Total: d("100"), SplitMethod: "equal", Beneficiaries: []string{"a", "b", "c", "d"}},
			shares:   map[string]string{"a": "25", "b": "25", "c": "25", "d": "25"},
			balanced: true,
		},
		{
			name: "unequal with unlisted beneficiary",
			req: &api.ResolveSplitRequest{
				Total:          d("100"),
				SplitMethod:    "unequal",
				UnequalAmounts: map[string]decimal.Decimal{"a": d("20"), "b": d("80")},
				Beneficiaries:  []string{"a", "b", "c"},
			},
			shares:   map[string]string{"a": "20", "b": "80", "c": "0"},
			balanced: true,
		},
		{
			name: "unequal not adding up",
			req: &api.ResolveSplitRequest{
				Total:          d("100"),
				SplitMethod:    "unequal",
				UnequalAmounts: map[string]decimal.Decimal{"a": d("20")},
				Beneficiaries:  []string{"a", "b"},
			},
			shares:   map[string]string{"a": "20", "b": "0"},
			balanced: false,
		},
		{
			name: "itemized with unassigned line",
			req: &api.ResolveSplitRequest{
				Total:       d("50"),
				SplitMethod: "itemized",
				Items: []api.LineItem{
					{Name: "Chips", Price: d("20"), AssignedTo: "b"},
					{Name: "Tip", Price: d("30")},
				},
				Beneficiaries: []string{"a", "b"},
			},
			shares:      map[string]string{"a": "0", "b": "20"},
			unallocated: "30",
			balanced:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.expenses.ResolveSplit(context.Background(), as(alice, tt.req))
			require.NoError(t, err)

			split := resp.Msg.Split
			require.Len(t, split.Shares, len(tt.shares))
			for id, want := range tt.shares {
				assertDecimal(t, want, split.Shares[id], "share of %s", id)
			}
			unallocated := tt.unallocated
			if unallocated == "" {
				unallocated = "0"
			}
			assertDecimal(t, unallocated, split.Unallocated)
			assert.Equal(t, tt.balanced, split.Balanced)
		})
	}

	_, err := env.expenses.ResolveSplit(context.Background(), as(alice, &api.ResolveSplitRequest{
		Total: d("10"), SplitMethod: "shares", Beneficiaries: []string{"a"},
	}))
	assert.Equal(t, connect.CodeInvalidArgument, codeOf(err))
}
