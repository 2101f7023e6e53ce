package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

const memberColumns = "id, name, initials, email, password_hash, created_at"

// CreateMember inserts a new member into the database.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}
	if member.Initials == "" {
		member.Initials = models.DeriveInitials(member.Name)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		member.ID,
		member.Name,
		member.Initials,
		nullString(member.Email),
		member.PasswordHash,
		member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, memberID)
	member, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, notFound("member", memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// GetMemberByEmail retrieves a member by their email address.
func (s *SQLiteStore) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE email = ?`, email)
	member, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, notFound("member", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by email: %w", err)
	}
	return member, nil
}

// GetMembersByIDs retrieves multiple members by their IDs.
// Returns a map of member ID to Member.
// Members that don't exist are omitted from the result.
func (s *SQLiteStore) GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error) {
	members := make(map[string]*models.Member, len(ids))
	if len(ids) == 0 {
		return members, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id IN (`+placeholders(len(ids))+`)`,
		toArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[member.ID] = member
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	member := &models.Member{}
	var email sql.NullString
	if err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Initials,
		&email,
		&member.PasswordHash,
		&member.CreatedAt,
	); err != nil {
		return nil, err
	}
	member.Email = email.String
	return member, nil
}
