package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")

	resp, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{
		Name:           "Roommates",
		MemberIDs:      []string{bob.member.ID, alice.member.ID},
		NewMemberNames: []string{"Charlie Day"},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if len(group.MemberIDs) != 3 {
		t.Fatalf("members: expected 3, got %d", len(group.MemberIDs))
	}
	if group.MemberIDs[0] != alice.member.ID {
		t.Errorf("expected creator first, got %v", group.MemberIDs)
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
	if len(resp.Msg.Members) != 3 || resp.Msg.Members[2].Initials != "CD" {
		t.Errorf("members: got %+v", resp.Msg.Members)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
		code connect.Code
	}{
		{"empty name", &api.CreateGroupRequest{Name: "  "}, connect.CodeInvalidArgument},
		{"unknown member", &api.CreateGroupRequest{Name: "G", MemberIDs: []string{"missing"}}, connect.CodeNotFound},
		{"blank new member", &api.CreateGroupRequest{Name: "G", NewMemberNames: []string{""}}, connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.CreateGroup(context.Background(), as(alice, tt.req))
			if codeOf(err) != tt.code {
				t.Errorf("expected %v, got %v", tt.code, err)
			}
		})
	}
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")
	eve := env.register(t, "Eve")

	createResp, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{
		Name:      "Work Lunch",
		MemberIDs: []string{bob.member.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := createResp.Msg.Group.ID

	getResp, err := env.groups.GetGroup(context.Background(), as(bob, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if getResp.Msg.Group.Name != "Work Lunch" {
		t.Errorf("name: expected 'Work Lunch', got '%s'", getResp.Msg.Group.Name)
	}
	if len(getResp.Msg.Members) != 2 {
		t.Errorf("members: expected 2, got %d", len(getResp.Msg.Members))
	}

	_, err = env.groups.GetGroup(context.Background(), as(eve, &api.GetGroupRequest{GroupID: groupID}))
	if codeOf(err) != connect.CodePermissionDenied {
		t.Errorf("outsider: expected PermissionDenied, got %v", err)
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")

	_, err := env.groups.GetGroup(context.Background(), as(alice, &api.GetGroupRequest{GroupID: "nonexistent-id"}))
	if err == nil {
		t.Fatal("expected error for nonexistent group")
	}
	if codeOf(err) != connect.CodeNotFound {
		t.Errorf("expected CodeNotFound, got %v", err)
	}
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")

	for _, name := range []string{"Group A", "Group B"} {
		if _, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{Name: name})); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}

	listResp, err := env.groups.ListGroups(context.Background(), as(alice, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(listResp.Msg.Groups) != 2 {
		t.Errorf("expected 2 groups, got %d", len(listResp.Msg.Groups))
	}

	listResp, err = env.groups.ListGroups(context.Background(), as(bob, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(listResp.Msg.Groups) != 0 {
		t.Errorf("expected 0 groups for bob, got %d", len(listResp.Msg.Groups))
	}
}

func TestAddGroupMembers(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register(t, "Alice")
	bob := env.register(t, "Bob")

	createResp, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{Name: "Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := createResp.Msg.Group.ID

	_, err = env.groups.AddGroupMembers(context.Background(), as(bob, &api.AddGroupMembersRequest{
		GroupID:   groupID,
		MemberIDs: []string{bob.member.ID},
	}))
	if codeOf(err) != connect.CodePermissionDenied {
		t.Errorf("non-member adding: expected PermissionDenied, got %v", err)
	}

	addResp, err := env.groups.AddGroupMembers(context.Background(), as(alice, &api.AddGroupMembersRequest{
		GroupID:        groupID,
		MemberIDs:      []string{bob.member.ID, alice.member.ID},
		NewMemberNames: []string{"Dana"},
	}))
	if err != nil {
		t.Fatalf("AddGroupMembers failed: %v", err)
	}
	if len(addResp.Msg.Group.MemberIDs) != 3 {
		t.Errorf("members: expected 3, got %v", addResp.Msg.Group.MemberIDs)
	}
	if addResp.Msg.Group.MemberIDs[1] != bob.member.ID {
		t.Errorf("expected bob second, got %v", addResp.Msg.Group.MemberIDs)
	}
}
