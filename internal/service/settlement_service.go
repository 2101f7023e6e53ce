package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

// SettlementService implements the Connect SettlementService: member
// summaries plus the record of real-world payments.
type SettlementService struct {
	store   storage.Store
	calc    calculator.Calculator
	cache   *SummaryCache
	metrics *metrics.Metrics
}

// NewSettlementService creates a SettlementService. cache and m may be nil.
func NewSettlementService(store storage.Store, calc calculator.Calculator, cache *SummaryCache, m *metrics.Metrics) *SettlementService {
	return &SettlementService{
		store:   store,
		calc:    calc,
		cache:   cache,
		metrics: m,
	}
}

// summaryInputs is one scope's snapshot, shared read-only by every summary
// computed from it.
type summaryInputs struct {
	groupID     string
	expenses    []calculator.Expense
	members     []calculator.Member
	settlements []calculator.Settlement
}

// GetMemberSummary computes a member's settlement summary within a group or
// across every expense they take part in.
func (s *SettlementService) GetMemberSummary(ctx context.Context, req *connect.Request[api.GetMemberSummaryRequest]) (*connect.Response[api.GetMemberSummaryResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	target := req.Msg.MemberID
	if target == "" {
		target = caller
	}
	groupID := req.Msg.GroupID
	slog.Info("GetMemberSummary request received", "member_id", target, "group_id", groupID)

	var group *models.Group
	scope := metrics.ScopeAll
	if groupID != "" {
		if group, err = memberGroup(ctx, s.store, groupID, caller); err != nil {
			return nil, err
		}
		if !group.HasMember(target) {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("member %s is not in group %s", target, groupID))
		}
		scope = metrics.ScopeGroup
	} else if target != caller {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("summaries across all groups are only available for the caller"))
	}

	version, err := s.store.ExpenseSetVersion(ctx, groupID)
	if err != nil {
		slog.Error("GetMemberSummary failed - could not read version", "group_id", groupID, "error", err)
		return nil, storeError(err)
	}
	key := summaryKey(groupID, target, version)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHit()
		slog.Debug("GetMemberSummary served from cache", "key", key)
		return connect.NewResponse(&api.GetMemberSummaryResponse{Summary: cached}), nil
	}
	s.metrics.CacheMiss()

	var in *summaryInputs
	if group != nil {
		in, err = s.loadGroupInputs(ctx, group)
	} else {
		in, err = s.loadMemberInputs(ctx, target)
	}
	if err != nil {
		return nil, err
	}

	summary, err := s.compute(in, target, scope)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, summary)

	slog.Info("GetMemberSummary successful",
		"member_id", target,
		"group_id", groupID,
		"expenses_count", len(in.expenses),
		"need_to_pay", len(summary.NeedToPay),
		"waiting_for_payment", len(summary.WaitingForPayment),
	)
	return connect.NewResponse(&api.GetMemberSummaryResponse{Summary: summary}), nil
}

// GetGroupSummaries computes one summary per group member, in member order.
func (s *SettlementService) GetGroupSummaries(ctx context.Context, req *connect.Request[api.GetGroupSummariesRequest]) (*connect.Response[api.GetGroupSummariesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupSummaries request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}
	version, err := s.store.ExpenseSetVersion(ctx, group.ID)
	if err != nil {
		return nil, storeError(err)
	}
	in, err := s.loadGroupInputs(ctx, group)
	if err != nil {
		return nil, err
	}

	summaries := make([]api.MemberSummary, len(group.MemberIDs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, memberID := range group.MemberIDs {
		i, memberID := i, memberID
		g.Go(func() error {
			key := summaryKey(group.ID, memberID, version)
			if cached, ok := s.cache.Get(key); ok {
				s.metrics.CacheHit()
				summaries[i] = cached
				return nil
			}
			s.metrics.CacheMiss()

			summary, err := s.compute(in, memberID, metrics.ScopeGroup)
			if err != nil {
				return err
			}
			s.cache.Set(key, summary)
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("GetGroupSummaries failed", "group_id", group.ID, "error", err)
		return nil, err
	}

	slog.Info("GetGroupSummaries successful",
		"group_id", group.ID,
		"expenses_count", len(in.expenses),
		"members_count", len(summaries),
	)
	return connect.NewResponse(&api.GetGroupSummariesResponse{Summaries: summaries}), nil
}

// compute runs the engine for one target and overlays paid flags.
func (s *SettlementService) compute(in *summaryInputs, targetID, scope string) (api.MemberSummary, error) {
	start := time.Now()

	summary, agg, err := s.calc.Summary(targetID, in.expenses, in.members)
	switch {
	case errors.Is(err, calculator.ErrTooManyExpenses):
		return api.MemberSummary{}, connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, calculator.ErrUnknownMember):
		return api.MemberSummary{}, connect.NewError(connect.CodeNotFound, err)
	case err != nil:
		return api.MemberSummary{}, connect.NewError(connect.CodeInternal, err)
	}

	if len(agg.Dropped) > 0 {
		slog.Warn("Contributions dropped for unknown counterparties",
			"member_id", targetID,
			"group_id", in.groupID,
			"count", len(agg.Dropped),
			"amount", agg.DroppedTotal(),
		)
		s.metrics.AddDropped(len(agg.Dropped))
	}

	calculator.OverlayPaid(&summary, in.settlements)
	s.metrics.ObserveSummary(scope, time.Since(start))
	return toAPISummary(summary, agg), nil
}

// loadGroupInputs snapshots a group. Counterparties resolve against the
// group's members only.
func (s *SettlementService) loadGroupInputs(ctx context.Context, group *models.Group) (*summaryInputs, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to list group expenses", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to list group settlements", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}
	members, err := s.directory(ctx, group.MemberIDs)
	if err != nil {
		return nil, err
	}
	return newSummaryInputs(group.ID, expenses, members, settlements), nil
}

// loadMemberInputs snapshots every expense memberID takes part in.
// Counterparties resolve against everyone those expenses reference.
func (s *SettlementService) loadMemberInputs(ctx context.Context, memberID string) (*summaryInputs, error) {
	expenses, err := s.store.ListExpensesByMember(ctx, memberID)
	if err != nil {
		slog.Error("Failed to list member expenses", "member_id", memberID, "error", err)
		return nil, storeError(err)
	}
	settlements, err := s.store.ListSettlementsByMember(ctx, memberID)
	if err != nil {
		slog.Error("Failed to list member settlements", "member_id", memberID, "error", err)
		return nil, storeError(err)
	}

	ids := []string{memberID}
	for _, e := range expenses {
		ids = append(ids, e.Participants()...)
	}
	members, err := s.directory(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	return newSummaryInputs("", expenses, members, settlements), nil
}

// directory resolves ids to engine members, keeping the order of ids and
// skipping unknown ones.
func (s *SettlementService) directory(ctx context.Context, ids []string) ([]calculator.Member, error) {
	byID, err := s.store.GetMembersByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err)
	}
	members := make([]calculator.Member, 0, len(byID))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			members = append(members, toCalculatorMember(m))
		}
	}
	return members, nil
}

func newSummaryInputs(groupID string, expenses []*models.Expense, members []calculator.Member, settlements []*models.Settlement) *summaryInputs {
	in := &summaryInputs{
		groupID:     groupID,
		expenses:    make([]calculator.Expense, len(expenses)),
		members:     members,
		settlements: toCalculatorSettlements(settlements),
	}
	for i, e := range expenses {
		in.expenses[i] = calculator.NewLedgerExpense(e)
	}
	return in
}

// RecordSettlement stores a real-world payment between two members.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	from := req.Msg.FromMemberID
	if from == "" {
		from = caller
	}
	to := req.Msg.ToMemberID
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", from,
		"to", to,
		"amount", req.Msg.Amount,
	)

	if to == "" {
		return nil, invalidArgument("to_member_id required")
	}
	if from == to {
		return nil, invalidArgument("cannot settle with yourself")
	}
	if caller != from && caller != to {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("caller must be the payer or the payee"))
	}
	if !req.Msg.Amount.IsPositive() {
		return nil, invalidArgument("amount must be positive")
	}
	if _, err := requireMembers(ctx, s.store, []string{from, to}); err != nil {
		return nil, err
	}

	if req.Msg.GroupID != "" {
		group, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(from) || !group.HasMember(to) {
			return nil, invalidArgument("both members must belong to group %s", group.ID)
		}
	}

	expenseIDs := dedupe(req.Msg.ExpenseIDs)
	for _, id := range expenseIDs {
		expense, err := s.store.GetExpense(ctx, id)
		if err != nil {
			return nil, storeError(err)
		}
		if req.Msg.GroupID != "" && expense.GroupID != req.Msg.GroupID {
			return nil, invalidArgument("expense %s is not in group %s", id, req.Msg.GroupID)
		}
	}

	settlement := &models.Settlement{
		GroupID:      req.Msg.GroupID,
		FromMemberID: from,
		ToMemberID:   to,
		Amount:       req.Msg.Amount,
		ExpenseIDs:   expenseIDs,
		CreatedBy:    caller,
		Note:         req.Msg.Note,
	}
	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "error", err)
		return nil, storeError(err)
	}

	slog.Info("Settlement recorded", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListSettlements lists a group's settlements, or every settlement of the caller.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	var settlements []*models.Settlement
	if req.Msg.GroupID != "" {
		if _, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller); err != nil {
			return nil, err
		}
		settlements, err = s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	} else {
		settlements, err = s.store.ListSettlementsByMember(ctx, caller)
	}
	if err != nil {
		slog.Error("ListSettlements failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]api.Settlement, len(settlements))
	for i, settlement := range settlements {
		out[i] = toAPISettlement(settlement)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a settlement. Only its parties and its author may delete it.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	if req.Msg.SettlementID == "" {
		return nil, invalidArgument("settlement_id required")
	}
	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, storeError(err)
	}
	if caller != settlement.FromMemberID && caller != settlement.ToMemberID && caller != settlement.CreatedBy {
		return nil, connect.NewError(connect.CodePermissionDenied, errNoAccess)
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}
