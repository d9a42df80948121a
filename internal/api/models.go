package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/rgoodall/taskly-api/internal/domain"
)

// Common request/response structures

// SignupRequest defines the payload for the user signup endpoint.
// Field-level validation (blank checks after trimming, password match) is
// handled in the handler so the client sees the exact expected messages.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmpassword"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PasswordResetRequest defines the payload for requesting a reset email.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest defines the payload for the reset confirm
// endpoint. The uid and token ride in the URL path.
type PasswordResetConfirmRequest struct {
	Password string `json:"password"`
}

// TokenPair carries the credential pair issued at signup.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// SignupResponse defines the successful response for the signup endpoint.
type SignupResponse struct {
	Message string    `json:"message"`
	Tokens  TokenPair `json:"tokens"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	Access   string `json:"access"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// MessageResponse is the generic {"message": ...} success body.
type MessageResponse struct {
	Message string `json:"message"`
}

// TaskRequest defines the payload for creating or fully replacing a task.
type TaskRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status"      validate:"required,oneof=Pending Completed"`
}

// TaskResponse is the task representation returned by every task endpoint.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTaskResponse builds the API representation of a task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// PaginatedTasksResponse is the page envelope for task listings: total match
// count plus absolute-path links to the neighboring pages, null at the edges.
type PaginatedTasksResponse struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []TaskResponse `json:"results"`
}
