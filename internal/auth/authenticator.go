// Package auth implements account credentials and session tokens.
package auth

import (
	"context"

	"github.com/raaksss/Monies/internal/models"
)

// Authenticator registers accounts and checks their credentials.
type Authenticator interface {
	// Register creates an account. The credential is the plaintext password.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account for a matching email and credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// Lookup returns the account with the given ID.
	Lookup(ctx context.Context, userID string) (*models.User, error)
}
