package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrTaskNotFound indicates the requested task does not exist or is not
	// owned by the requesting user. The two cases are deliberately merged so
	// the existence of other users' tasks cannot be probed.
	// API layer maps this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found or not owned by user")

	// ErrInvalidOrdering indicates the requested ordering field is not one
	// of the listable columns.
	// API layer maps this to HTTP 400 Bad Request.
	ErrInvalidOrdering = errors.New("invalid ordering field")
)
