package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raaksss/Monies/internal/models"
	"github.com/raaksss/Monies/internal/storage"
)

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, group_id, description, amount, paid_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PaidBy,
			toMillis(expense.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertSplits(ctx, tx, expense)
	})
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	var expense *models.Expense
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		expense, err = loadExpense(ctx, tx, expenseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func loadExpense(ctx context.Context, q querier, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var createdAt int64
	err := q.QueryRowContext(ctx,
		"SELECT id, group_id, description, amount, paid_by, created_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.PaidBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.CreatedAt = fromMillis(createdAt)

	rows, err := q.QueryContext(ctx,
		`SELECT id, expense_id, member_id, amount, is_settled, settled_at
		 FROM expense_splits WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return expense, nil
}

// UpdateExpense rewrites an expense and replaces its splits. Replaced splits start
// unsettled because the obligations they described no longer exist.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE expenses SET description = ?, amount = ?, paid_by = ? WHERE id = ?",
			expense.Description, expense.Amount, expense.PaidBy, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to delete old splits: %w", err)
		}
		for i := range expense.Splits {
			expense.Splits[i].ID = ""
			expense.Splits[i].IsSettled = false
			expense.Splits[i].SettledAt = time.Time{}
		}
		return insertSplits(ctx, tx, expense)
	})
}

// DeleteExpense removes an expense; its splits cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// GetSplit retrieves a split and the ID of the group its expense belongs to.
func (s *SQLiteStore) GetSplit(ctx context.Context, splitID string) (*models.Split, string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.expense_id, s.member_id, s.amount, s.is_settled, s.settled_at, e.group_id
		 FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		 WHERE s.id = ?`,
		splitID,
	)

	var split models.Split
	var settledAt sql.NullInt64
	var groupID string
	err := row.Scan(&split.ID, &split.ExpenseID, &split.MemberID, &split.Amount, &split.IsSettled, &settledAt, &groupID)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get split: %w", err)
	}
	if settledAt.Valid {
		split.SettledAt = fromMillis(settledAt.Int64)
	}
	return &split, groupID, nil
}

// SettleSplits marks all given splits settled, or none of them.
func (s *SQLiteStore) SettleSplits(ctx context.Context, splitIDs []string, at time.Time) error {
	if len(splitIDs) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range splitIDs {
			res, err := tx.ExecContext(ctx,
				"UPDATE expense_splits SET is_settled = 1, settled_at = ? WHERE id = ? AND is_settled = 0",
				toMillis(at), id,
			)
			if err != nil {
				return fmt.Errorf("failed to settle split %s: %w", id, err)
			}
			if n, _ := res.RowsAffected(); n == 1 {
				continue
			}

			var exists int
			err = tx.QueryRowContext(ctx, "SELECT 1 FROM expense_splits WHERE id = ?", id).Scan(&exists)
			if err == sql.ErrNoRows {
				return fmt.Errorf("split %s: %w", id, storage.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("failed to check split %s: %w", id, err)
			}
			return fmt.Errorf("split %s: %w", id, storage.ErrSettlementConflict)
		}
		return nil
	})
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Splits {
		split := &expense.Splits[i]
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		split.ExpenseID = expense.ID

		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_splits (id, expense_id, member_id, amount, is_settled, settled_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			split.ID, expense.ID, split.MemberID, split.Amount, split.IsSettled, nullMillis(split.SettledAt), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

func loadExpenses(ctx context.Context, q querier, groupID string) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, rowid DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}

	var expenses []models.Expense
	index := make(map[string]int)
	for rows.Next() {
		var e models.Expense
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PaidBy, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.CreatedAt = fromMillis(createdAt)
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splitRows, err := q.QueryContext(ctx,
		`SELECT s.id, s.expense_id, s.member_id, s.amount, s.is_settled, s.settled_at
		 FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ? ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		split, err := scanSplit(splitRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[split.ExpenseID]; ok {
			expenses[i].Splits = append(expenses[i].Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return expenses, nil
}

func scanSplit(rows *sql.Rows) (models.Split, error) {
	var split models.Split
	var settledAt sql.NullInt64
	if err := rows.Scan(&split.ID, &split.ExpenseID, &split.MemberID, &split.Amount, &split.IsSettled, &settledAt); err != nil {
		return split, fmt.Errorf("failed to scan split: %w", err)
	}
	if settledAt.Valid {
		split.SettledAt = fromMillis(settledAt.Int64)
	}
	return split, nil
}
