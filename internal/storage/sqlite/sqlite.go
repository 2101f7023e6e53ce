// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/settleup/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ExpenseSetVersion returns the current revision of a scope.
func (s *SQLiteStore) ExpenseSetVersion(ctx context.Context, groupID string) (int64, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx,
		"SELECT revision FROM scope_revisions WHERE scope = ?", groupID,
	).Scan(&revision)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get scope revision: %w", err)
	}
	return revision, nil
}

// bumpRevision advances the all-expenses scope and, when set, the group scope.
func bumpRevision(ctx context.Context, tx *sql.Tx, groupID string) error {
	scopes := []string{""}
	if groupID != "" {
		scopes = append(scopes, groupID)
	}
	for _, scope := range scopes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO scope_revisions (scope, revision) VALUES (?, 1)
			 ON CONFLICT(scope) DO UPDATE SET revision = revision + 1`,
			scope,
		)
		if err != nil {
			return fmt.Errorf("failed to bump revision: %w", err)
		}
	}
	return nil
}

// nullString maps "" to NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// placeholders returns "?, ?, ?" for n arguments.
// Used for building IN clauses with multiple placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// toArgs converts ids to query arguments.
func toArgs(ids []string) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %w: %s", kind, storage.ErrNotFound, id)
}
