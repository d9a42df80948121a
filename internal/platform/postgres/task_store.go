package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/platform/logger"
	"github.com/rgoodall/taskly-api/internal/store"
)

// taskOrderColumns whitelists the columns a task listing may be ordered by.
// Ordering input is interpolated into SQL, so anything outside this set is
// rejected before query construction.
var taskOrderColumns = map[string]struct{}{
	store.TaskOrderID:          {},
	store.TaskOrderTitle:       {},
	store.TaskOrderDescription: {},
	store.TaskOrderStatus:      {},
	store.TaskOrderCreatedAt:   {},
	store.TaskOrderUpdatedAt:   {},
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist
// (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// GetForUser implements store.TaskStore.GetForUser
// Ownership is part of the lookup predicate, so a task owned by another
// user yields the same store.ErrTaskNotFound as a missing task.
func (s *PostgresTaskStore) GetForUser(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, title, description, status, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`

	var task domain.Task
	var status string

	err := s.db.QueryRowContext(ctx, query, taskID, userID).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for user",
				slog.String("task_id", taskID.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}

	task.Status = domain.TaskStatus(status)
	return &task, nil
}

// Update implements store.TaskStore.Update
// Only the mutable fields are written; ID, user_id and created_at are fixed
// at creation. Returns store.ErrTaskNotFound if no task with that ID is
// owned by task.UserID.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Status,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}

	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// DeleteForUser implements store.TaskStore.DeleteForUser
// Returns store.ErrTaskNotFound if no task with that ID is owned by userID.
func (s *PostgresTaskStore) DeleteForUser(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID,
		userID,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}

	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// ListForUser implements store.TaskStore.ListForUser
// It returns the page of matching tasks plus the total match count.
func (s *PostgresTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	query store.TaskQuery,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	orderClause, err := buildOrderClause(query.Ordering)
	if err != nil {
		return nil, 0, err
	}

	where := `WHERE user_id = $1`
	args := []any{userID}

	if query.Search != "" {
		where += ` AND (title ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\')`
		args = append(args, "%"+escapeLikePattern(query.Search)+"%")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	listQuery := `
		SELECT id, user_id, title, description, status, created_at, updated_at
		FROM tasks ` + where + `
		ORDER BY ` + orderClause
	if query.Limit > 0 {
		listQuery += fmt.Sprintf(` LIMIT %d`, query.Limit)
	}
	if query.Offset > 0 {
		listQuery += fmt.Sprintf(` OFFSET %d`, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		var status string
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&status,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		task.Status = domain.TaskStatus(status)
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	return tasks, total, nil
}

// buildOrderClause translates a TaskQuery ordering value into a SQL ORDER BY
// body. A leading '-' selects descending order. Unknown columns are rejected
// with store.ErrInvalidEntity so they surface as a client error rather than
// reaching the database.
func buildOrderClause(ordering string) (string, error) {
	column := ordering
	direction := "ASC"

	if column == "" {
		column = store.TaskOrderID
	}

	if strings.HasPrefix(column, "-") {
		column = column[1:]
		direction = "DESC"
	}

	if _, ok := taskOrderColumns[column]; !ok {
		return "", fmt.Errorf("%w: unknown ordering field %q", store.ErrInvalidEntity, ordering)
	}

	return column + " " + direction, nil
}

// escapeLikePattern escapes LIKE metacharacters so user-supplied search text
// matches literally.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
