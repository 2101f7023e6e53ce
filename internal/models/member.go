package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Member represents a participant identity.
// Members are referenced by expenses and settlements through their ID and
// are never mutated by the settlement engine.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// Name is the display name of the member.
	Name string

	// Initials are the display initials (e.g., "AB" for "Alice Brown").
	// Derived from Name when left empty.
	Initials string

	// Email is the login address (unique). Empty for members added by
	// name only.
	Email string

	// PasswordHash is the bcrypt hash of the member's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the member was created.
	CreatedAt int64
}

// NewMember creates a member with initials derived from the name.
func NewMember(name, email, passwordHash string) *Member {
	return &Member{
		Name:         name,
		Initials:     DeriveInitials(name),
		Email:        email,
		PasswordHash: passwordHash,
	}
}

// DeriveInitials returns up to two upper-case initials from a display name.
func DeriveInitials(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '.'
	})
	var b strings.Builder
	for i, f := range fields {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(f)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
