package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is an error with a fixed HTTP status and a machine readable code
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// WithDetails returns a copy carrying details. Predefined errors are shared,
// so they are never modified in place.
func (e *APIError) WithDetails(details interface{}) *APIError {
	return &APIError{StatusCode: e.StatusCode, ErrorCode: e.ErrorCode, Message: e.Message, Details: details}
}

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the details payload for several rejected fields
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// New creates an APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// NewWithDetails creates an APIError with details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return New(statusCode, errorCode, message).WithDetails(details)
}

var (
	ErrInvalidRequest    = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrValidationFailed  = New(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
	ErrInvalidFilter     = New(http.StatusBadRequest, "INVALID_FILTER", "Invalid task filter")
	ErrNotFound          = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrTaskNotFound      = New(http.StatusNotFound, "TASK_NOT_FOUND", "Task not found")
	ErrTableNotFound     = New(http.StatusNotFound, "TABLE_NOT_FOUND", "Data table not found")
	ErrUnsupportedFormat = New(http.StatusNotAcceptable, "UNSUPPORTED_FORMAT", "Unsupported export format")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrExportFailed      = New(http.StatusInternalServerError, "EXPORT_FAILED", "Export failed")

	ErrDatasetUnavailable = New(http.StatusServiceUnavailable, "DATASET_UNAVAILABLE", "Dataset could not be loaded")
)

// InvalidRequestWithError reports a body or parameter that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return ErrInvalidRequest.WithDetails(err.Error())
}

// ErrValidation reports a single rejected field
func ErrValidation(field, message string) *APIError {
	return ErrValidationFailed.WithDetails(ValidationError{Field: field, Message: message})
}

// NewValidationErrors reports several rejected fields at once
func NewValidationErrors(errors []ValidationError) *APIError {
	return ErrValidationFailed.WithDetails(ValidationErrors{Errors: errors})
}

// NewValidationError creates a validation error with a custom message
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, ErrValidationFailed.ErrorCode, message)
}

// NotFoundError reports a missing resource by name
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, ErrNotFound.ErrorCode, fmt.Sprintf("%s not found", resource), resource)
}
