package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

// snapshot is the input file: the same JSON shapes the RPC services speak.
type snapshot struct {
	Members     []api.Member     `json:"members"`
	Expenses    []api.Expense    `json:"expenses"`
	Settlements []api.Settlement `json:"settlements,omitempty"`
}

func readSnapshot(path string, stdin io.Reader) (*snapshot, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	var snap snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// members returns the snapshot's member directory.
func (s *snapshot) members() []calculator.Member {
	out := make([]calculator.Member, len(s.Members))
	for i, m := range s.Members {
		initials := m.Initials
		if initials == "" {
			initials = models.DeriveInitials(m.Name)
		}
		out[i] = calculator.Member{ID: m.ID, Name: m.Name, Initials: initials}
	}
	return out
}

// expenses returns the ledger views of the expenses in groupID, or of all
// expenses when groupID is empty.
func (s *snapshot) expenses(groupID string) []calculator.Expense {
	var out []calculator.Expense
	for _, e := range s.Expenses {
		if groupID != "" && e.GroupID != groupID {
			continue
		}
		out = append(out, calculator.NewLedgerExpense(toModelExpense(e)))
	}
	return out
}

func (s *snapshot) settlements(groupID string) []calculator.Settlement {
	var out []calculator.Settlement
	for _, st := range s.Settlements {
		if groupID != "" && st.GroupID != groupID {
			continue
		}
		out = append(out, calculator.Settlement{FromID: st.FromMemberID, ToID: st.ToMemberID, Amount: st.Amount})
	}
	return out
}

func toModelExpense(e api.Expense) *models.Expense {
	out := &models.Expense{
		ID:             e.ID,
		GroupID:        e.GroupID,
		Title:          e.Title,
		Total:          e.Total,
		SplitMethod:    e.SplitMethod,
		UnequalAmounts: e.UnequalAmounts,
		Beneficiaries:  e.Beneficiaries,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
	for _, p := range e.Payers {
		out.Payers = append(out.Payers, models.Payer{MemberID: p.MemberID, Amount: p.Amount})
	}
	for _, item := range e.Items {
		out.Items = append(out.Items, models.LineItem{Name: item.Name, Price: item.Price, AssignedTo: item.AssignedTo})
	}
	return out
}
