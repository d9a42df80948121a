package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rgoodall/taskly-api/internal/domain"
)

// Task ordering fields accepted by TaskQuery. A leading '-' on the query
// value selects descending order.
const (
	TaskOrderID          = "id"
	TaskOrderTitle       = "title"
	TaskOrderDescription = "description"
	TaskOrderStatus      = "status"
	TaskOrderCreatedAt   = "created_at"
	TaskOrderUpdatedAt   = "updated_at"
)

// TaskQuery describes the filtering, ordering, and pagination applied to a
// task listing. The zero value lists everything ordered by ID ascending.
type TaskQuery struct {
	// Ordering is a whitelisted column name, optionally prefixed with '-'
	// for descending order. Empty means "id".
	Ordering string

	// Search filters to tasks whose title or description contains the
	// given text, case-insensitively. Empty means no filtering.
	Search string

	// Offset is the number of matching tasks to skip.
	Offset int

	// Limit caps the number of tasks returned. Zero or negative means no cap.
	Limit int
}

// TaskStore defines the interface for task data persistence. Every read and
// mutation is scoped to an owning user: a task that exists but belongs to a
// different user behaves exactly like a task that does not exist.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owning user does not exist.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetForUser retrieves the task with the given ID owned by the given
	// user. Returns ErrTaskNotFound if no such task is owned by that user.
	GetForUser(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// Update persists the mutable fields (title, description, status,
	// updated-at) of a task owned by the given user.
	// Returns ErrTaskNotFound if no such task is owned by that user.
	Update(ctx context.Context, task *domain.Task) error

	// DeleteForUser removes the task with the given ID owned by the given
	// user. Returns ErrTaskNotFound if no such task is owned by that user.
	DeleteForUser(ctx context.Context, userID, taskID uuid.UUID) error

	// ListForUser returns the tasks owned by the given user that match the
	// query, along with the total number of matches before pagination.
	ListForUser(ctx context.Context, userID uuid.UUID, query TaskQuery) ([]*domain.Task, int, error)
}
