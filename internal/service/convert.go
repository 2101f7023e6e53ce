package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIMember(m *models.Member) api.Member {
	return api.Member{
		ID:       m.ID,
		Name:     m.Name,
		Initials: m.Initials,
		Email:    m.Email,
	}
}

func toAPIMembers(ids []string, byID map[string]*models.Member) []api.Member {
	out := make([]api.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, toAPIMember(m))
		}
	}
	return out
}

func toAPIGroup(g *models.Group) api.Group {
	return api.Group{
		ID:        g.ID,
		Name:      g.Name,
		MemberIDs: append([]string{}, g.MemberIDs...),
		CreatedAt: g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) api.Expense {
	out := api.Expense{
		ID:            e.ID,
		GroupID:       e.GroupID,
		Title:         e.Title,
		Total:         e.Total,
		SplitMethod:   e.SplitMethod,
		Payers:        make([]api.Payer, len(e.Payers)),
		Beneficiaries: append([]string{}, e.Beneficiaries...),
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
	}
	for i, p := range e.Payers {
		out.Payers[i] = api.Payer{MemberID: p.MemberID, Amount: p.Amount}
	}
	if len(e.UnequalAmounts) > 0 {
		out.UnequalAmounts = make(map[string]decimal.Decimal, len(e.UnequalAmounts))
		for id, amt := range e.UnequalAmounts {
			out.UnequalAmounts[id] = amt
		}
	}
	for _, item := range e.Items {
		out.Items = append(out.Items, api.LineItem{Name: item.Name, Price: item.Price, AssignedTo: item.AssignedTo})
	}
	return out
}

// toModelExpense copies the request expense into a new record. The split
// method is normalised so "" is stored as equal.
func toModelExpense(e api.Expense, method calculator.SplitMethod) *models.Expense {
	out := &models.Expense{
		GroupID:       e.GroupID,
		Title:         e.Title,
		Total:         e.Total,
		SplitMethod:   method.String(),
		Beneficiaries: append([]string(nil), e.Beneficiaries...),
	}
	for _, p := range e.Payers {
		out.Payers = append(out.Payers, models.Payer{MemberID: p.MemberID, Amount: p.Amount})
	}
	switch method {
	case calculator.Unequal:
		out.UnequalAmounts = make(map[string]decimal.Decimal, len(e.UnequalAmounts))
		for id, amt := range e.UnequalAmounts {
			out.UnequalAmounts[id] = amt
		}
	case calculator.Itemized:
		for _, item := range e.Items {
			out.Items = append(out.Items, models.LineItem{Name: item.Name, Price: item.Price, AssignedTo: item.AssignedTo})
		}
	}
	return out
}

func toSplitResult(view calculator.Expense) api.SplitResult {
	shares := view.Shares()
	return api.SplitResult{
		Shares:      shares,
		SharesTotal: shares.Total(),
		Unallocated: calculator.UnallocatedAmount(view.Payload),
		Balanced:    calculator.IsBalanced(view.Total, shares),
	}
}

func toCalculatorMember(m *models.Member) calculator.Member {
	return calculator.Member{ID: m.ID, Name: m.Name, Initials: m.Initials}
}

func toAPICalcMember(m calculator.Member) api.Member {
	return api.Member{ID: m.ID, Name: m.Name, Initials: m.Initials}
}

func toAPITransactions(txs []calculator.SettlementTransaction) []api.SettlementTransaction {
	out := make([]api.SettlementTransaction, len(txs))
	for i, tx := range txs {
		breakdown := make([]api.ExpenseBreakdown, len(tx.Breakdown))
		for j, b := range tx.Breakdown {
			breakdown[j] = api.ExpenseBreakdown{
				ExpenseID:        b.ExpenseID,
				ExpenseTitle:     b.ExpenseTitle,
				ExpenseDate:      b.ExpenseDate.Unix(),
				ItemName:         b.ItemName,
				Amount:           b.Amount,
				CounterpartyName: b.CounterpartyName,
			}
		}
		out[i] = api.SettlementTransaction{
			From:      toAPICalcMember(tx.From),
			To:        toAPICalcMember(tx.To),
			Amount:    tx.Amount,
			Breakdown: breakdown,
			IsPaid:    tx.IsPaid,
		}
	}
	return out
}

func toAPISummary(summary calculator.MemberSettlementSummary, agg calculator.Aggregation) api.MemberSummary {
	return api.MemberSummary{
		Member:             toAPICalcMember(summary.Member),
		NeedToPay:          toAPITransactions(summary.NeedToPay),
		WaitingForPayment:  toAPITransactions(summary.WaitingForPayment),
		TotalToPay:         summary.TotalToPay(),
		TotalToReceive:     summary.TotalToReceive(),
		UnattributedAmount: agg.DroppedTotal(),
	}
}

func toAPISettlement(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		ExpenseIDs:   append([]string(nil), s.ExpenseIDs...),
		CreatedAt:    s.CreatedAt,
		CreatedBy:    s.CreatedBy,
		Note:         s.Note,
	}
}

func toCalculatorSettlements(settlements []*models.Settlement) []calculator.Settlement {
	out := make([]calculator.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = calculator.Settlement{FromID: s.FromMemberID, ToID: s.ToMemberID, Amount: s.Amount}
	}
	return out
}
