package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique, stored lower-case).
	Email string

	// DisplayName is shown on groups the user creates.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
