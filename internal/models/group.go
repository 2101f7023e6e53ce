package models

import "slices"

// Group represents a set of members who share expenses.
// Expenses and settlements may belong to a group; a member summary can be
// scoped to one group or span every expense the member takes part in.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// MemberIDs lists the members of this group in the order they joined.
	MemberIDs []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether memberID belongs to the group.
func (g *Group) HasMember(memberID string) bool {
	return slices.Contains(g.MemberIDs, memberID)
}
