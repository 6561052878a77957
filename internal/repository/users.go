// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/and161185/zest/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to accounts.
type UserRepository interface {
	// Create inserts a new user; a taken email yields errs.ErrAlreadyExists.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateFullName changes the display name and returns the updated user.
	UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) (*model.User, error)
}

// SessionRepository stores bearer sessions.
type SessionRepository interface {
	// Create persists a session.
	Create(ctx context.Context, s *model.Session) error
	// GetUserByToken returns the owner of a session that has not expired at now.
	GetUserByToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	// DeleteByToken removes a session; absent tokens are not an error.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired removes sessions with expires_at <= now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
