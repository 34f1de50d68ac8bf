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

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateGroup persists a new group and its members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
			group.ID, group.Name, group.Description, group.CreatedBy, toMillis(group.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for i := range group.Members {
			m := &group.Members[i]
			if m.ID == "" {
				m.ID = uuid.New().String()
			}
			m.GroupID = group.ID
			if err := insertMember(ctx, tx, m, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group by ID, including members, expenses and splits.
// All reads share one transaction, so the tree is a single snapshot.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group *models.Group
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		group, err = loadGroup(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func loadGroup(ctx context.Context, q querier, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64
	err := q.QueryRowContext(ctx,
		"SELECT id, name, description, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = fromMillis(createdAt)

	if group.Members, err = loadMembers(ctx, q, groupID); err != nil {
		return nil, err
	}
	if group.Expenses, err = loadExpenses(ctx, q, groupID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsByUser retrieves the groups created by a user, newest first.
func (s *SQLiteStore) ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_by, created_at
		 FROM groups WHERE created_by = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		var createdAt int64
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.CreatedAt = fromMillis(createdAt)
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		if group.Members, err = loadMembers(ctx, s.db, group.ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// UpdateGroup updates a group's details and reconciles its member roster.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE groups SET name = ?, description = ? WHERE id = ?",
			group.Name, group.Description, group.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update group: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
		}

		current, err := loadMembers(ctx, tx, group.ID)
		if err != nil {
			return err
		}
		existing := make(map[string]bool, len(current))
		for _, m := range current {
			existing[m.ID] = true
		}

		keep := make(map[string]bool, len(group.Members))
		for i := range group.Members {
			m := &group.Members[i]
			m.GroupID = group.ID
			if m.ID == "" {
				m.ID = uuid.New().String()
				if err := insertMember(ctx, tx, m, i); err != nil {
					return err
				}
			} else if existing[m.ID] {
				if _, err := tx.ExecContext(ctx,
					"UPDATE group_members SET name = ?, position = ? WHERE id = ?",
					m.Name, i, m.ID,
				); err != nil {
					return fmt.Errorf("failed to update member: %w", err)
				}
			} else {
				return fmt.Errorf("member %s in group %s: %w", m.ID, group.ID, storage.ErrNotFound)
			}
			keep[m.ID] = true
		}

		for _, m := range current {
			if keep[m.ID] {
				continue
			}
			var uses int
			err := tx.QueryRowContext(ctx,
				`SELECT (SELECT COUNT(*) FROM expenses WHERE paid_by = ?) +
				        (SELECT COUNT(*) FROM expense_splits WHERE member_id = ?)`,
				m.ID, m.ID,
			).Scan(&uses)
			if err != nil {
				return fmt.Errorf("failed to check member usage: %w", err)
			}
			if uses > 0 {
				return fmt.Errorf("cannot remove %s: %w", m.Name, storage.ErrMemberInUse)
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE id = ?", m.ID); err != nil {
				return fmt.Errorf("failed to remove member: %w", err)
			}
		}
		return nil
	})
}

// DeleteGroup removes a group; members, expenses and splits cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return nil
}

func insertMember(ctx context.Context, q querier, m *models.Member, position int) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO group_members (id, group_id, name, user_id, position) VALUES (?, ?, ?, ?, ?)",
		m.ID, m.GroupID, m.Name, nullString(m.UserID), position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

func loadMembers(ctx context.Context, q querier, groupID string) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, group_id, name, user_id FROM group_members WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var userID sql.NullString
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.UserID = userID.String
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
