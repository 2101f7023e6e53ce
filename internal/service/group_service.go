package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group. The caller is always its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
		"new_members_count", len(req.Msg.NewMemberNames),
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("group name required")
	}

	memberIDs := dedupe(append([]string{caller}, req.Msg.MemberIDs...))
	if _, err := requireMembers(ctx, s.store, memberIDs); err != nil {
		return nil, err
	}

	created, err := s.createNamedMembers(ctx, req.Msg.NewMemberNames)
	if err != nil {
		return nil, err
	}
	memberIDs = append(memberIDs, created...)

	group := &models.Group{
		Name:      name,
		MemberIDs: memberIDs,
	}
	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storeError(err)
	}

	members, err := s.store.GetMembersByIDs(ctx, group.MemberIDs)
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.MemberIDs))
	return connect.NewResponse(&api.CreateGroupResponse{
		Group:   toAPIGroup(group),
		Members: toAPIMembers(group.MemberIDs, members),
	}), nil
}

// GetGroup retrieves a group and its members.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	members, err := s.store.GetMembersByIDs(ctx, group.MemberIDs)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group:   toAPIGroup(group),
		Members: toAPIMembers(group.MemberIDs, members),
	}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received")

	groups, err := s.store.ListGroupsByMember(ctx, caller)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, storeError(err)
	}

	out := make([]api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddGroupMembers adds existing or name-only members to a group.
func (s *GroupService) AddGroupMembers(ctx context.Context, req *connect.Request[api.AddGroupMembersRequest]) (*connect.Response[api.AddGroupMembersResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddGroupMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.MemberIDs),
		"new_members_count", len(req.Msg.NewMemberNames),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	memberIDs := dedupe(req.Msg.MemberIDs)
	if _, err := requireMembers(ctx, s.store, memberIDs); err != nil {
		return nil, err
	}
	created, err := s.createNamedMembers(ctx, req.Msg.NewMemberNames)
	if err != nil {
		return nil, err
	}
	memberIDs = append(memberIDs, created...)

	if len(memberIDs) > 0 {
		if err := s.store.AddGroupMembers(ctx, group.ID, memberIDs); err != nil {
			slog.Error("AddGroupMembers failed", "group_id", group.ID, "error", err)
			return nil, storeError(err)
		}
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, storeError(err)
	}
	members, err := s.store.GetMembersByIDs(ctx, updated.MemberIDs)
	if err != nil {
		return nil, storeError(err)
	}

	slog.Info("Group members added", "group_id", group.ID, "members_count", len(updated.MemberIDs))
	return connect.NewResponse(&api.AddGroupMembersResponse{
		Group:   toAPIGroup(updated),
		Members: toAPIMembers(updated.MemberIDs, members),
	}), nil
}

// createNamedMembers creates a login-less member per name.
func (s *GroupService) createNamedMembers(ctx context.Context, names []string) ([]string, error) {
	var ids []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, invalidArgument("member name required")
		}
		member := models.NewMember(name, "", "")
		if err := s.store.CreateMember(ctx, member); err != nil {
			slog.Error("Failed to create member", "name", name, "error", err)
			return nil, storeError(fmt.Errorf("failed to create member %q: %w", name, err))
		}
		ids = append(ids, member.ID)
	}
	return ids, nil
}
