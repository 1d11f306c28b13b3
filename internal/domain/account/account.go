// Package account describes the authenticated-account subsystem the kennel
// provisions breeders against.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is the subset of an authenticated account the kennel needs.
type Account struct {
	ID             uuid.UUID
	Email          string
	EmailConfirmed bool
	CreatedAt      time.Time
}

// Error is a single structured problem reported by the account subsystem.
type Error struct {
	Code        string
	Description string
}

// Common error codes.
const (
	CodeDuplicateEmail = "DuplicateEmail"
	CodeInvalidEmail   = "InvalidEmail"
	CodePasswordPolicy = "PasswordPolicy"
)

// CreateError is returned by CreateAccount when the subsystem refuses the input.
type CreateError struct {
	Errors []Error
}

func (e *CreateError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Description
	}
	return fmt.Sprintf("account rejected: %s", strings.Join(msgs, "; "))
}

// Session is an issued sign-in credential.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Directory is the contract with the account subsystem.
type Directory interface {
	CreateAccount(ctx context.Context, email, password string) (*Account, error)
	// DeleteAccount removes an account. A missing account yields a NotFound error.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	GenerateConfirmationToken(ctx context.Context, id uuid.UUID) (string, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID, token string) error
	SignIn(ctx context.Context, id uuid.UUID, persistent bool) (*Session, error)
}
