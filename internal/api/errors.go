package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rgoodall/taskly-api/internal/api/shared"
	"github.com/rgoodall/taskly-api/internal/domain"
	"github.com/rgoodall/taskly-api/internal/service"
	"github.com/rgoodall/taskly-api/internal/service/auth"
	"github.com/rgoodall/taskly-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		return http.StatusNotFound

	// Bad request errors. Duplicate usernames are reported as a plain 400
	// rather than a 409.
	case errors.Is(err, store.ErrUsernameExists),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidOrdering),
		errors.Is(err, auth.ErrInvalidResetToken),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidResetToken):
		return "Invalid or expired token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "User ID not found or invalid"

	case errors.Is(err, store.ErrUserNotFound):
		return "No user Found"

	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		return "Task not found or not yours"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username is already taken"

	case errors.Is(err, service.ErrInvalidOrdering):
		return "Invalid ordering field"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			return "Invalid " + validationErr.Field
		}
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a struct-tag validation error into a
// user-friendly message without echoing internal type names.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		field := strings.ToLower(fieldErr.Field())
		return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fieldErr.Tag()))
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps err to a status code and safe message and writes the
// error response, logging the underlying error server-side. If overrideMessage
// is non-empty it replaces the mapped message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, overrideMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if overrideMessage != "" {
		message = overrideMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
