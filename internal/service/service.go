// Package service implements the settleup Connect services on top of
// storage.Store and the calculator engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var (
	errNotGroupMember = errors.New("caller is not a member of this group")
	errNoAccess       = errors.New("caller is not a participant")
)

// callerID returns the authenticated member of the request.
func callerID(ctx context.Context) (string, error) {
	id := middleware.GetMemberID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

// storeError maps a storage failure to a Connect error.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// memberGroup loads a group and checks that memberID belongs to it.
func memberGroup(ctx context.Context, store storage.Store, groupID, memberID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err)
	}
	if !group.HasMember(memberID) {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotGroupMember)
	}
	return group, nil
}

// requireMembers checks that every id names an existing member.
func requireMembers(ctx context.Context, store storage.Store, ids []string) (map[string]*models.Member, error) {
	members, err := store.GetMembersByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err)
	}
	for _, id := range ids {
		if _, ok := members[id]; !ok {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("member %s: %w", id, storage.ErrNotFound))
		}
	}
	return members, nil
}

// canViewExpense reports whether memberID may read or delete an expense:
// participants always can, and so can members of the expense's group.
func canViewExpense(ctx context.Context, store storage.Store, e *models.Expense, memberID string) (bool, error) {
	if e.CreatedBy == memberID || slices.Contains(e.Participants(), memberID) {
		return true, nil
	}
	if e.GroupID == "" {
		return false, nil
	}
	group, err := store.GetGroup(ctx, e.GroupID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return group.HasMember(memberID), nil
}

// dedupe returns ids without blanks or repeats, keeping first occurrences.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
