package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/calculator"
)

const tripSnapshot = `{
  "members": [
    {"id": "alice", "name": "Alice"},
    {"id": "bob", "name": "Bob"},
    {"id": "carol", "name": "Carol"}
  ],
  "expenses": [
    {
      "id": "e1", "group_id": "trip", "title": "Dinner", "total": "30",
      "split_method": "equal",
      "payers": [{"member_id": "alice", "amount": "30"}],
      "beneficiaries": ["alice", "bob", "carol"],
      "created_at": 1700000000
    },
    {
      "id": "e2", "group_id": "home", "title": "Groceries", "total": "12",
      "split_method": "itemized",
      "items": [
        {"name": "Chips", "price": "4", "assigned_to": "bob"},
        {"name": "Bread", "price": "5", "assigned_to": "carol"},
        {"name": "Gum", "price": "3"}
      ],
      "payers": [{"member_id": "carol", "amount": "12"}],
      "beneficiaries": ["bob", "carol"],
      "created_at": 1700000100
    }
  ],
  "settlements": [
    {"id": "s1", "group_id": "trip", "from_member_id": "bob", "to_member_id": "alice", "amount": "10"}
  ]
}`

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummary(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	out, err := run(t, "summary", "bob", "-f", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Bob (bob)")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Carol")
	assert.Contains(t, out, "Total to pay: 14.00")
	assert.Contains(t, out, "Total to receive: 0.00")
	assert.Contains(t, out, "paid")
}

func TestSummary_GroupScope(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	out, err := run(t, "summary", "bob", "-f", path, "--group", "trip", "--json")
	require.NoError(t, err)

	var summary calculator.MemberSettlementSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary.NeedToPay, 1)
	assert.Equal(t, "alice", summary.NeedToPay[0].To.ID)
	assert.Equal(t, "10", summary.NeedToPay[0].Amount.String())
	assert.True(t, summary.NeedToPay[0].IsPaid)
	assert.Empty(t, summary.WaitingForPayment)
}

func TestSummary_Errors(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	_, err := run(t, "summary", "zed", "-f", path)
	assert.ErrorIs(t, err, calculator.ErrUnknownMember)

	_, err = run(t, "summary", "bob", "-f", path, "--max-expenses", "1")
	assert.ErrorIs(t, err, calculator.ErrTooManyExpenses)

	_, err = run(t, "summary", "bob", "-f", writeSnapshot(t, `{"members": [], "bogus": 1}`))
	assert.Error(t, err)

	_, err = run(t, "summary", "-f", path)
	assert.Error(t, err)
}

func TestShares(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	out, err := run(t, "shares", "-f", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Dinner")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "unallocated")
	assert.Contains(t, out, "unbalanced")
}

func TestShares_ReadsStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString(tripSnapshot))
	cmd.SetArgs([]string{"shares", "--group", "trip"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Dinner")
	assert.NotContains(t, out.String(), "Groceries")
}
