package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID      = errors.New("task user ID cannot be empty")
	ErrEmptyTaskTitle       = errors.New("task title cannot be empty")
	ErrEmptyTaskDescription = errors.New("task description cannot be empty")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
)

// Task represents a unit of work owned by a single user. Visibility and
// mutation are always scoped to the owning user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewTask(userID uuid.UUID, title, description string, status TaskStatus) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.Description == "" {
		return ErrEmptyTaskDescription
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// Replace performs a full-field replace of the mutable fields (title,
// description, status) and refreshes the UpdatedAt timestamp. The task ID,
// owner, and CreatedAt never change. Returns an error if the replacement
// values fail validation; the task is left unmodified in that case.
func (t *Task) Replace(title, description string, status TaskStatus) error {
	replaced := *t
	replaced.Title = title
	replaced.Description = description
	replaced.Status = status

	if err := replaced.Validate(); err != nil {
		return err
	}

	replaced.UpdatedAt = time.Now().UTC()
	*t = replaced
	return nil
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusCompleted:
		return true
	default:
		return false
	}
}
