package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/platform/logger"
	"github.com/rgoodall/taskly-api/internal/store"
)

// Pagination bounds for task listings. Requests above MaxPageSize are
// capped, not rejected.
const (
	DefaultPageSize = 7
	MaxPageSize     = 10
)

// listableColumns enumerates the ordering fields a caller may request.
var listableColumns = map[string]struct{}{
	store.TaskOrderID:          {},
	store.TaskOrderTitle:       {},
	store.TaskOrderDescription: {},
	store.TaskOrderStatus:      {},
	store.TaskOrderCreatedAt:   {},
	store.TaskOrderUpdatedAt:   {},
}

// TaskListParams carries the caller-supplied listing options before
// normalization. Zero values select the defaults (ordering by ID ascending,
// no search, first page, DefaultPageSize items).
type TaskListParams struct {
	Ordering string
	Search   string
	Page     int
	PageSize int
}

// TaskPage is one page of a task listing plus the information needed to
// navigate the rest of it.
type TaskPage struct {
	Tasks    []*domain.Task
	Total    int
	Page     int
	PageSize int
}

// HasNext reports whether a later page holds more results.
func (p *TaskPage) HasNext() bool {
	return p.Page*p.PageSize < p.Total
}

// HasPrevious reports whether this is not the first page.
func (p *TaskPage) HasPrevious() bool {
	return p.Page > 1
}

// TaskService provides ownership-scoped task operations. Every method takes
// the calling user's ID; a task owned by someone else is indistinguishable
// from a missing one.
type TaskService interface {
	// ListTasks returns the page of the user's tasks selected by params.
	// Returns ErrInvalidOrdering if the ordering field is unknown.
	ListTasks(ctx context.Context, userID uuid.UUID, params TaskListParams) (*TaskPage, error)

	// CreateTask validates and persists a new task owned by the user.
	// Returns domain validation errors for bad input.
	CreateTask(ctx context.Context, userID uuid.UUID, title, description string, status domain.TaskStatus) (*domain.Task, error)

	// GetTask retrieves one of the user's tasks by ID.
	// Returns ErrTaskNotFound for missing or foreign tasks.
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask performs a full-field replace of title, description, and
	// status on one of the user's tasks.
	// Returns ErrTaskNotFound for missing or foreign tasks and domain
	// validation errors for bad input.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, title, description string, status domain.TaskStatus) (*domain.Task, error)

	// DeleteTask removes one of the user's tasks. The deletion is
	// irreversible. Returns ErrTaskNotFound for missing or foreign tasks.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface over a store.TaskStore.
type taskServiceImpl struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// Ensure taskServiceImpl implements TaskService interface
var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It returns an error if the required task store is nil.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	params TaskListParams,
) (*TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ordering, err := normalizeOrdering(params.Ordering)
	if err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	tasks, total, err := s.taskStore.ListForUser(ctx, userID, store.TaskQuery{
		Ordering: ordering,
		Search:   strings.TrimSpace(params.Search),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	log.Debug("tasks listed",
		slog.String("user_id", userID.String()),
		slog.Int("page", page),
		slog.Int("page_size", pageSize),
		slog.Int("total", total))

	return &TaskPage{
		Tasks:    tasks,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	status domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, title, description, status)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetForUser(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	title, description string,
	status domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetForUser(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if err := task.Replace(title, description, status); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			// Deleted between read and write; same outcome for the caller.
			return nil, ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.taskStore.DeleteForUser(ctx, userID, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// normalizeOrdering validates the requested ordering and applies the default.
func normalizeOrdering(ordering string) (string, error) {
	if ordering == "" {
		return store.TaskOrderID, nil
	}

	column := strings.TrimPrefix(ordering, "-")
	if _, ok := listableColumns[column]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrdering, ordering)
	}

	return ordering, nil
}
