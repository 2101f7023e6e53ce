// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for settleup storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateMember persists a new member. ID, CreatedAt and Initials are
	// filled in when empty.
	CreateMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves a member by ID.
	GetMember(ctx context.Context, memberID string) (*models.Member, error)

	// GetMemberByEmail retrieves a member by login email.
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)

	// GetMembersByIDs retrieves several members at once.
	// Members that don't exist are omitted from the result.
	GetMembersByIDs(ctx context.Context, ids []string) (map[string]*models.Member, error)

	// CreateGroup persists a new group with its members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID including its member IDs.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember retrieves every group memberID belongs to.
	ListGroupsByMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// AddGroupMembers adds members to a group, ignoring ones already present.
	AddGroupMembers(ctx context.Context, groupID string, memberIDs []string) error

	// CreateExpense persists a new expense with payers, beneficiaries and payload.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves a complete expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves all expenses of a group, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListExpensesByMember retrieves every expense memberID paid for or
	// benefited from, across all groups, oldest first.
	ListExpensesByMember(ctx context.Context, memberID string) ([]*models.Expense, error)

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement persists a recorded payment.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup retrieves all settlements of a group, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// ListSettlementsByMember retrieves every settlement memberID sent or received.
	ListSettlementsByMember(ctx context.Context, memberID string) ([]*models.Settlement, error)

	// DeleteSettlement removes a settlement.
	DeleteSettlement(ctx context.Context, settlementID string) error

	// ExpenseSetVersion returns the revision of a scope's expenses and
	// settlements. groupID "" is the all-expenses scope. The revision grows
	// on every write touching the scope, membership changes included.
	ExpenseSetVersion(ctx context.Context, groupID string) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
