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

const debtColumns = `id, user_id, person_name, amount, created_at, updated_at`

// CreateDebt persists a new personal debt.
func (s *SQLiteStore) CreateDebt(ctx context.Context, debt *models.PersonalDebt) error {
	if debt.ID == "" {
		debt.ID = uuid.New().String()
	}
	if debt.CreatedAt.IsZero() {
		debt.CreatedAt = time.Now()
	}
	debt.UpdatedAt = debt.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debts (`+debtColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		debt.ID, debt.UserID, debt.PersonName, debt.Amount,
		toMillis(debt.CreatedAt), toMillis(debt.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	return nil
}

// GetDebt retrieves a personal debt by ID.
func (s *SQLiteStore) GetDebt(ctx context.Context, debtID string) (*models.PersonalDebt, error) {
	debt := &models.PersonalDebt{}
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = ?`,
		debtID,
	).Scan(&debt.ID, &debt.UserID, &debt.PersonName, &debt.Amount, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("debt %s: %w", debtID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	debt.CreatedAt = fromMillis(createdAt)
	debt.UpdatedAt = fromMillis(updatedAt)
	return debt, nil
}

// ListDebtsByUser retrieves all debts of a user, newest first.
func (s *SQLiteStore) ListDebtsByUser(ctx context.Context, userID string) ([]*models.PersonalDebt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []*models.PersonalDebt
	for rows.Next() {
		debt := &models.PersonalDebt{}
		var createdAt, updatedAt int64
		if err := rows.Scan(&debt.ID, &debt.UserID, &debt.PersonName, &debt.Amount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debt.CreatedAt = fromMillis(createdAt)
		debt.UpdatedAt = fromMillis(updatedAt)
		debts = append(debts, debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// UpdateDebt changes the person name and amount of a debt.
func (s *SQLiteStore) UpdateDebt(ctx context.Context, debt *models.PersonalDebt) error {
	debt.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		"UPDATE debts SET person_name = ?, amount = ?, updated_at = ? WHERE id = ?",
		debt.PersonName, debt.Amount, toMillis(debt.UpdatedAt), debt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("debt %s: %w", debt.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteDebt removes a debt by ID.
func (s *SQLiteStore) DeleteDebt(ctx context.Context, debtID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", debtID)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("debt %s: %w", debtID, storage.ErrNotFound)
	}
	return nil
}
