package mocks

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, task *domain.Task) error
	GetForUserFn    func(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	UpdateFn        func(ctx context.Context, task *domain.Task) error
	DeleteForUserFn func(ctx context.Context, userID, taskID uuid.UUID) error
	ListForUserFn   func(ctx context.Context, userID uuid.UUID, query store.TaskQuery) ([]*domain.Task, int, error)

	// Data for default implementation
	Tasks       map[uuid.UUID]*domain.Task
	CreateError error
	ListError   error
}

// Ensure MockTaskStore implements store.TaskStore
var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.Tasks[task.ID] = task
	return nil
}

// GetForUser implements the TaskStore interface
func (m *MockTaskStore) GetForUser(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetForUserFn != nil {
		return m.GetForUserFn(ctx, userID, taskID)
	}

	task, exists := m.Tasks[taskID]
	if !exists || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	existing, exists := m.Tasks[task.ID]
	if !exists || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}

	m.Tasks[task.ID] = task
	return nil
}

// DeleteForUser implements the TaskStore interface
func (m *MockTaskStore) DeleteForUser(ctx context.Context, userID, taskID uuid.UUID) error {
	if m.DeleteForUserFn != nil {
		return m.DeleteForUserFn(ctx, userID, taskID)
	}

	task, exists := m.Tasks[taskID]
	if !exists || task.UserID != userID {
		return store.ErrTaskNotFound
	}

	delete(m.Tasks, taskID)
	return nil
}

// ListForUser implements the TaskStore interface. The default implementation
// filters, sorts, and paginates the in-memory map well enough for handler and
// service tests; only id and title ordering are supported.
func (m *MockTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	query store.TaskQuery,
) ([]*domain.Task, int, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID, query)
	}

	if m.ListError != nil {
		return nil, 0, m.ListError
	}

	var matched []*domain.Task
	needle := strings.ToLower(query.Search)
	for _, task := range m.Tasks {
		if task.UserID != userID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(task.Title), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			continue
		}
		matched = append(matched, task)
	}

	desc := strings.HasPrefix(query.Ordering, "-")
	column := strings.TrimPrefix(query.Ordering, "-")
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch column {
		case store.TaskOrderTitle:
			less = matched[i].Title < matched[j].Title
		default:
			less = matched[i].ID.String() < matched[j].ID.String()
		}
		if desc {
			return !less
		}
		return less
	})

	total := len(matched)
	if query.Offset >= total {
		return nil, total, nil
	}
	matched = matched[query.Offset:]
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	return matched, total, nil
}
