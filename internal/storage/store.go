// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/raaksss/Monies/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSettlementConflict is returned when a batch of splits cannot be settled
	// as a whole because one of them is already settled. Nothing is written.
	ErrSettlementConflict = errors.New("split already settled")

	// ErrMemberInUse is returned when removing a member that has expenses or splits.
	ErrMemberInUse = errors.New("member has expenses in this group")
)

// UserStore persists registered users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns nil and no error when the email is unknown.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// GroupStore persists groups, members, expenses and splits.
type GroupStore interface {
	// CreateGroup inserts the group and its members. IDs and CreatedAt are populated.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with members, expenses (newest first) and splits.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByUser returns the groups created by userID, newest first, with members only.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup updates name, description and the member roster. Members without an ID
	// are added, members with an ID are renamed, missing members are removed.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group, its members, expenses and splits.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense inserts the expense and its splits in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense rewrites the expense row and replaces all of its splits.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	DeleteExpense(ctx context.Context, expenseID string) error

	// GetSplit returns a split with its expense's group ID.
	GetSplit(ctx context.Context, splitID string) (*models.Split, string, error)

	// SettleSplits marks every split settled at the given time in one transaction.
	// If any split is missing or already settled nothing is written.
	SettleSplits(ctx context.Context, splitIDs []string, at time.Time) error
}

// DebtStore persists personal debts.
type DebtStore interface {
	CreateDebt(ctx context.Context, debt *models.PersonalDebt) error
	GetDebt(ctx context.Context, debtID string) (*models.PersonalDebt, error)
	// ListDebtsByUser returns the user's debts newest first.
	ListDebtsByUser(ctx context.Context, userID string) ([]*models.PersonalDebt, error)
	UpdateDebt(ctx context.Context, debt *models.PersonalDebt) error
	DeleteDebt(ctx context.Context, debtID string) error
}

// Store defines the full storage surface used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	DebtStore

	// Close releases any resources held by the store.
	Close() error
}
