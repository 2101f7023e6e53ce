package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func (e *testEnv) summary(t *testing.T, caller session, req *api.GetMemberSummaryRequest) api.MemberSummary {
	t.Helper()
	resp, err := e.settlements.GetMemberSummary(context.Background(), as(caller, req))
	require.NoError(t, err)
	return resp.Msg.Summary
}

func TestGetMemberSummary_DinnerInGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	charlie := env.register(t, "Charlie")
	group := env.newGroup(t, alice, "Friends", bob, charlie)
	expense := env.createExpense(t, alice, dinner(group.ID, alice, alice, bob, charlie))

	got := env.summary(t, alice, &api.GetMemberSummaryRequest{GroupID: group.ID})
	assert.Equal(t, alice.member.ID, got.Member.ID)
	assert.Empty(t, got.NeedToPay)
	require.Len(t, got.WaitingForPayment, 2)
	assert.Equal(t, bob.member.ID, got.WaitingForPayment[0].From.ID)
	assert.Equal(t, charlie.member.ID, got.WaitingForPayment[1].From.ID)
	for _, tx := range got.WaitingForPayment {
		assert.Equal(t, alice.member.ID, tx.To.ID)
		assertDecimal(t, "30", tx.Amount)
		assert.False(t, tx.IsPaid)
		require.Len(t, tx.Breakdown, 1)
		assert.Equal(t, expense.Expense.ID, tx.Breakdown[0].ExpenseID)
		assert.Equal(t, "Dinner", tx.Breakdown[0].ExpenseTitle)
		assertDecimal(t, "30", tx.Breakdown[0].Amount)
	}
	assertDecimal(t, "60", got.TotalToReceive)
	assertDecimal(t, "0", got.TotalToPay)
	assertDecimal(t, "0", got.UnattributedAmount)

	// Asking for another member of the same group is allowed.
	bobView := env.summary(t, alice, &api.GetMemberSummaryRequest{MemberID: bob.member.ID, GroupID: group.ID})
	require.Len(t, bobView.NeedToPay, 1)
	assert.Equal(t, alice.member.ID, bobView.NeedToPay[0].To.ID)
	assertDecimal(t, "30", bobView.NeedToPay[0].Amount)
	assertDecimal(t, "-30", bobView.NeedToPay[0].Breakdown[0].Amount)
	assert.Empty(t, bobView.WaitingForPayment)

	assert.Positive(t, env.cache.Len())
	again := env.summary(t, alice, &api.GetMemberSummaryRequest{GroupID: group.ID})
	assert.Equal(t, got, again)
}

func TestGetMemberSummary_TripAcrossGroups(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")

	env.createExpense(t, alice, api.Expense{
		Title:       "Trip",
		Total:       d("100"),
		SplitMethod: "unequal",
		UnequalAmounts: map[string]decimal.Decimal{
			alice.member.ID: d("20"),
			bob.member.ID:   d("80"),
		},
		Payers:        []api.Payer{{MemberID: bob.member.ID, Amount: d("100")}},
		Beneficiaries: []string{alice.member.ID, bob.member.ID},
	})

	aliceView := env.summary(t, alice, &api.GetMemberSummaryRequest{})
	require.Len(t, aliceView.NeedToPay, 1)
	assert.Equal(t, bob.member.ID, aliceView.NeedToPay[0].To.ID)
	assertDecimal(t, "20", aliceView.NeedToPay[0].Amount)
	assert.Empty(t, aliceView.WaitingForPayment)

	bobView := env.summary(t, bob, &api.GetMemberSummaryRequest{})
	require.Len(t, bobView.WaitingForPayment, 1)
	assert.Equal(t, alice.member.ID, bobView.WaitingForPayment[0].From.ID)
	assertDecimal(t, "20", bobView.WaitingForPayment[0].Amount)

	_, err := env.settlements.GetMemberSummary(context.Background(),
		as(alice, &api.GetMemberSummaryRequest{MemberID: bob.member.ID}))
	assert.Equal(t, connect.CodePermissionDenied, codeOf(err))
}

func TestGetMemberSummary_Access(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	eve := env.register(t, "Eve")
	group := env.newGroup(t, alice, "Pair", bob)
	ctx := context.Background()

	_, err := env.settlements.GetMemberSummary(ctx, as(eve, &api.GetMemberSummaryRequest{GroupID: group.ID}))
	assert.Equal(t, connect.CodePermissionDenied, codeOf(err))

	_, err = env.settlements.GetMemberSummary(ctx, as(alice, &api.GetMemberSummaryRequest{
		MemberID: eve.member.ID, GroupID: group.ID,
	}))
	assert.Equal(t, connect.CodeNotFound, codeOf(err))

	_, err = env.settlements.GetMemberSummary(ctx, as(alice, &api.GetMemberSummaryRequest{GroupID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, codeOf(err))

	// A member with no expenses has an empty summary, not an error.
	empty := env.summary(t, bob, &api.GetMemberSummaryRequest{GroupID: group.ID})
	assert.Empty(t, empty.NeedToPay)
	assert.Empty(t, empty.WaitingForPayment)
}

func TestGetMemberSummary_UnknownCounterpartyIsReported(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	group := env.newGroup(t, alice, "Cab")

	// Written straight to the store: the service would reject the unknown member.
	err := env.store.CreateExpense(context.Background(), &models.Expense{
		GroupID:       group.ID,
		Title:         "Taxi",
		Total:         d("40"),
		SplitMethod:   models.SplitEqual,
		Payers:        []models.Payer{{MemberID: alice.member.ID, Amount: d("40")}},
		Beneficiaries: []string{alice.member.ID, "ghost"},
	})
	require.NoError(t, err)

	got := env.summary(t, alice, &api.GetMemberSummaryRequest{GroupID: group.ID})
	assert.Empty(t, got.WaitingForPayment)
	assertDecimal(t, "20", got.UnattributedAmount)
}

func TestGetGroupSummaries(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	charlie := env.register(t, "Charlie")
	group := env.newGroup(t, alice, "Friends", bob, charlie)
	env.createExpense(t, alice, dinner(group.ID, alice, alice, bob, charlie))

	resp, err := env.settlements.GetGroupSummaries(context.Background(), as(bob, &api.GetGroupSummariesRequest{GroupID: group.ID}))
	require.NoError(t, err)

	summaries := resp.Msg.Summaries
	require.Len(t, summaries, 3)
	assert.Equal(t, alice.member.ID, summaries[0].Member.ID)
	assert.Equal(t, bob.member.ID, summaries[1].Member.ID)
	assert.Equal(t, charlie.member.ID, summaries[2].Member.ID)

	// Every debt appears once on each side.
	toPay, toReceive := decimal.Zero, decimal.Zero
	for _, s := range summaries {
		toPay = toPay.Add(s.TotalToPay)
		toReceive = toReceive.Add(s.TotalToReceive)
	}
	assertDecimal(t, "60", toPay)
	assertDecimal(t, "60", toReceive)

	// Single summaries agree with the batch.
	single := env.summary(t, charlie, &api.GetMemberSummaryRequest{GroupID: group.ID})
	assert.Equal(t, summaries[2], single)
}

func TestRecordSettlement_MarksTransactionPaid(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	charlie := env.register(t, "Charlie")
	group := env.newGroup(t, alice, "Friends", bob, charlie)
	expense := env.createExpense(t, alice, dinner(group.ID, alice, alice, bob, charlie))
	ctx := context.Background()

	// Prime the cache; the settlement must invalidate it.
	env.summary(t, alice, &api.GetMemberSummaryRequest{GroupID: group.ID})

	recorded, err := env.settlements.RecordSettlement(ctx, as(bob, &api.RecordSettlementRequest{
		GroupID:    group.ID,
		ToMemberID: alice.member.ID,
		Amount:     d("30"),
		ExpenseIDs: []string{expense.Expense.ID},
		Note:       "cash",
	}))
	require.NoError(t, err)
	settlement := recorded.Msg.Settlement
	assert.Equal(t, bob.member.ID, settlement.FromMemberID)
	assert.Equal(t, bob.member.ID, settlement.CreatedBy)

	got := env.summary(t, alice, &api.GetMemberSummaryRequest{GroupID: group.ID})
	require.Len(t, got.WaitingForPayment, 2)
	assert.True(t, got.WaitingForPayment[0].IsPaid, "bob paid")
	assert.False(t, got.WaitingForPayment[1].IsPaid, "charlie did not")
	// Balances stay gross.
	assertDecimal(t, "60", got.TotalToReceive)

	list, err := env.settlements.ListSettlements(ctx, as(charlie, &api.ListSettlementsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Settlements, 1)

	_, err = env.settlements.DeleteSettlement(ctx, as(charlie, &api.DeleteSettlementRequest{SettlementID: settlement.ID}))
	assert.Equal(t, connect.CodePermissionDenied, codeOf(err))

	_, err = env.settlements.DeleteSettlement(ctx, as(alice, &api.DeleteSettlementRequest{SettlementID: settlement.ID}))
	require.NoError(t, err)

	got = env.summary(t, alice, &api.GetMemberSummaryRequest{GroupID: group.ID})
	assert.False(t, got.WaitingForPayment[0].IsPaid)
}

func TestRecordSettlement_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	eve := env.register(t, "Eve")
	group := env.newGroup(t, alice, "Pair", bob)
	outside := env.createExpense(t, alice, dinner("", alice, alice, eve))

	tests := []struct {
		name   string
		caller session
		req    *api.RecordSettlementRequest
		code   connect.Code
	}{
		{"missing payee", alice, &api.RecordSettlementRequest{Amount: d("1")}, connect.CodeInvalidArgument},
		{"self", alice, &api.RecordSettlementRequest{ToMemberID: alice.member.ID, Amount: d("1")}, connect.CodeInvalidArgument},
		{"zero amount", alice, &api.RecordSettlementRequest{ToMemberID: bob.member.ID}, connect.CodeInvalidArgument},
		{"third party", eve, &api.RecordSettlementRequest{
			FromMemberID: alice.member.ID, ToMemberID: bob.member.ID, Amount: d("1"),
		}, connect.CodePermissionDenied},
		{"unknown payee", alice, &api.RecordSettlementRequest{ToMemberID: "ghost", Amount: d("1")}, connect.CodeNotFound},
		{"payee outside group", alice, &api.RecordSettlementRequest{
			GroupID: group.ID, ToMemberID: eve.member.ID, Amount: d("1"),
		}, connect.CodeInvalidArgument},
		{"expense outside group", alice, &api.RecordSettlementRequest{
			GroupID: group.ID, ToMemberID: bob.member.ID, Amount: d("1"), ExpenseIDs: []string{outside.Expense.ID},
		}, connect.CodeInvalidArgument},
		{"unknown expense", alice, &api.RecordSettlementRequest{
			ToMemberID: bob.member.ID, Amount: d("1"), ExpenseIDs: []string{"missing"},
		}, connect.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.settlements.RecordSettlement(context.Background(), as(tt.caller, tt.req))
			assert.Equal(t, tt.code, codeOf(err), "err: %v", err)
		})
	}

	// Settlements outside any group are listed per member.
	_, err := env.settlements.RecordSettlement(context.Background(), as(eve, &api.RecordSettlementRequest{
		ToMemberID: alice.member.ID, Amount: d("45"),
	}))
	require.NoError(t, err)
	list, err := env.settlements.ListSettlements(context.Background(), as(alice, &api.ListSettlementsRequest{}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Settlements, 1)
}
