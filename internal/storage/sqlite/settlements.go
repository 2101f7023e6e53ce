package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

const settlementColumns = "id, group_id, from_member_id, to_member_id, amount, created_at, created_by, note"

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, nullString(settlement.GroupID), settlement.FromMemberID, settlement.ToMemberID,
		settlement.Amount, settlement.CreatedAt, settlement.CreatedBy, nullString(settlement.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, expenseID := range settlement.ExpenseIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlement_expenses (settlement_id, expense_id) VALUES (?, ?)
			 ON CONFLICT DO NOTHING`,
			settlement.ID, expenseID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settled expense: %w", err)
		}
	}

	if err := bumpRevision(ctx, tx, settlement.GroupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, settlementID)
	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, notFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if err := s.loadSettledExpenses(ctx, []*models.Settlement{settlement}); err != nil {
		return nil, err
	}
	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
}

// ListSettlementsByMember retrieves all settlements memberID sent or received.
func (s *SQLiteStore) ListSettlementsByMember(ctx context.Context, memberID string) ([]*models.Settlement, error) {
	return s.listSettlements(ctx,
		`SELECT `+settlementColumns+` FROM settlements
		 WHERE from_member_id = ? OR to_member_id = ?
		 ORDER BY created_at DESC, id`,
		memberID, memberID,
	)
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Check if settlement exists
	var groupID sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT group_id FROM settlements WHERE id = ?", settlementID).Scan(&groupID)
	if err == sql.ErrNoRows {
		return notFound("settlement", settlementID)
	}
	if err != nil {
		return fmt.Errorf("failed to check settlement existence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID); err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	if err := bumpRevision(ctx, tx, groupID.String); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listSettlements(ctx context.Context, query string, args ...interface{}) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	if err := s.loadSettledExpenses(ctx, settlements); err != nil {
		return nil, err
	}
	return settlements, nil
}

func (s *SQLiteStore) loadSettledExpenses(ctx context.Context, settlements []*models.Settlement) error {
	for _, settlement := range settlements {
		ids, err := s.queryIDs(ctx,
			"SELECT expense_id FROM settlement_expenses WHERE settlement_id = ? ORDER BY expense_id",
			settlement.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get settled expenses: %w", err)
		}
		settlement.ExpenseIDs = ids
	}
	return nil
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var groupID, note sql.NullString
	if err := row.Scan(&settlement.ID, &groupID, &settlement.FromMemberID, &settlement.ToMemberID,
		&settlement.Amount, &settlement.CreatedAt, &settlement.CreatedBy, &note); err != nil {
		return nil, err
	}
	settlement.GroupID = groupID.String
	settlement.Note = note.String
	return settlement, nil
}
