package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// CreateExpense persists a new expense with its payers, beneficiaries and
// split payload in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.SplitMethod == "" {
		expense.SplitMethod = models.SplitEqual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, title, total, split_method, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, nullString(expense.GroupID), expense.Title, expense.Total,
		expense.SplitMethod, expense.CreatedAt, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, payer := range expense.Payers {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_payers (expense_id, position, member_id, amount) VALUES (?, ?, ?, ?)",
			expense.ID, i, payer.MemberID, payer.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payer: %w", err)
		}
	}

	for i, memberID := range expense.Beneficiaries {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_beneficiaries (expense_id, position, member_id) VALUES (?, ?, ?)",
			expense.ID, i, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert beneficiary: %w", err)
		}
	}

	for memberID, amount := range expense.UnequalAmounts {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_unequal_amounts (expense_id, member_id, amount) VALUES (?, ?, ?)",
			expense.ID, memberID, amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert unequal amount: %w", err)
		}
	}

	for i := range expense.Items {
		item := &expense.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_items (id, expense_id, position, name, price, assigned_to)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, expense.ID, i, item.Name, item.Price, nullString(item.AssignedTo),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := bumpRevision(ctx, tx, expense.GroupID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including payers, beneficiaries and payload.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, title, total, split_method, created_at, created_by
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &groupID, &expense.Title, &expense.Total,
		&expense.SplitMethod, &expense.CreatedAt, &expense.CreatedBy)
	if err == sql.ErrNoRows {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.GroupID = groupID.String

	if err := s.loadPayers(ctx, expense); err != nil {
		return nil, err
	}
	if err := s.loadBeneficiaries(ctx, expense); err != nil {
		return nil, err
	}
	switch expense.SplitMethod {
	case models.SplitUnequal:
		if err := s.loadUnequalAmounts(ctx, expense); err != nil {
			return nil, err
		}
	case models.SplitItemized:
		if err := s.loadItems(ctx, expense); err != nil {
			return nil, err
		}
	}

	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group, oldest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		"SELECT id FROM expenses WHERE group_id = ? ORDER BY created_at, id",
		groupID,
	)
}

// ListExpensesByMember retrieves every expense memberID paid for or consumed.
func (s *SQLiteStore) ListExpensesByMember(ctx context.Context, memberID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		`SELECT id FROM expenses WHERE id IN (
		     SELECT expense_id FROM expense_payers WHERE member_id = ?
		     UNION
		     SELECT expense_id FROM expense_beneficiaries WHERE member_id = ?
		 ) ORDER BY created_at, id`,
		memberID, memberID,
	)
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT group_id FROM expenses WHERE id = ?", expenseID).Scan(&groupID)
	if err == sql.ErrNoRows {
		return notFound("expense", expenseID)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if err := bumpRevision(ctx, tx, groupID.String); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...interface{}) ([]*models.Expense, error) {
	ids, err := s.queryIDs(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	expenses := make([]*models.Expense, 0, len(ids))
	for _, id := range ids {
		expense, err := s.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

func (s *SQLiteStore) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) loadPayers(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, amount FROM expense_payers WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get payers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payer models.Payer
		if err := rows.Scan(&payer.MemberID, &payer.Amount); err != nil {
			return fmt.Errorf("failed to scan payer: %w", err)
		}
		expense.Payers = append(expense.Payers, payer)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payers: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadBeneficiaries(ctx context.Context, expense *models.Expense) error {
	ids, err := s.queryIDs(ctx,
		"SELECT member_id FROM expense_beneficiaries WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get beneficiaries: %w", err)
	}
	expense.Beneficiaries = ids
	return nil
}

func (s *SQLiteStore) loadUnequalAmounts(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, amount FROM expense_unequal_amounts WHERE expense_id = ?",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get unequal amounts: %w", err)
	}
	defer rows.Close()

	expense.UnequalAmounts = make(map[string]decimal.Decimal)
	for rows.Next() {
		var memberID string
		var amount decimal.Decimal
		if err := rows.Scan(&memberID, &amount); err != nil {
			return fmt.Errorf("failed to scan unequal amount: %w", err)
		}
		expense.UnequalAmounts[memberID] = amount
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate unequal amounts: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadItems(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price, assigned_to FROM expense_items WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.LineItem
		var assignedTo sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &assignedTo); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		item.AssignedTo = assignedTo.String
		expense.Items = append(expense.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}
	return nil
}
