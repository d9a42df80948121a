package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rgoodall/taskly-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password; plaintext passwords are never persisted.
	// Returns ErrUsernameExists if the username is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash for the given user
	// and refreshes the updated-at timestamp.
	// Returns ErrUserNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error

	// Delete removes a user from the store by their ID. Tasks owned by the
	// user are removed with it.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
