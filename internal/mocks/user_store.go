package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn         func(ctx context.Context, user *domain.User) error
	GetByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsernameFn  func(ctx context.Context, username string) (*domain.User, error)
	GetByEmailFn     func(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordFn func(ctx context.Context, id uuid.UUID, hashedPassword string) error
	DeleteFn         func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation, keyed by username
	Users       map[string]*domain.User
	CreateError error
}

// Ensure MockUserStore implements store.UserStore
var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	if _, exists := m.Users[user.Username]; exists {
		return store.ErrUsernameExists
	}

	m.Users[user.Username] = user
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// GetByUsername implements the UserStore interface
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}

	user, exists := m.Users[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	return user, nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// UpdatePassword implements the UserStore interface
func (m *MockUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, id, hashedPassword)
	}

	for _, user := range m.Users {
		if user.ID == id {
			user.HashedPassword = hashedPassword
			user.UpdatedAt = time.Now().UTC()
			return nil
		}
	}

	return store.ErrUserNotFound
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	for username, user := range m.Users {
		if user.ID == id {
			delete(m.Users, username)
			return nil
		}
	}

	return store.ErrUserNotFound
}
