package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types (RFC 7807 "type" member)
const (
	TypeValidation         = "/errors/validation"
	TypeNotFound           = "/errors/not-found"
	TypeMethodNotAllowed   = "/errors/method-not-allowed"
	TypeRateLimit          = "/errors/rate-limit"
	TypeInternal           = "/errors/internal"
	TypeTimeout            = "/errors/timeout"
	TypeTaskNotFound       = "/errors/task/not-found"
	TypeTableNotFound      = "/errors/data/table-not-found"
	TypeInvalidFilter      = "/errors/filter/invalid"
	TypeUnsupportedFormat  = "/errors/export/unsupported-format"
	TypeExportFailed       = "/errors/export/failed"
	TypeDatasetUnavailable = "/errors/data/unavailable"
)

var problemTypes = map[string]string{
	"INVALID_REQUEST":     TypeValidation,
	"VALIDATION_FAILED":   TypeValidation,
	"INVALID_FILTER":      TypeInvalidFilter,
	"NOT_FOUND":           TypeNotFound,
	"TASK_NOT_FOUND":      TypeTaskNotFound,
	"TABLE_NOT_FOUND":     TypeTableNotFound,
	"UNSUPPORTED_FORMAT":  TypeUnsupportedFormat,
	"EXPORT_FAILED":       TypeExportFailed,
	"RATE_LIMIT_EXCEEDED": TypeRateLimit,
	"DATASET_UNAVAILABLE": TypeDatasetUnavailable,
}

// appErrorCodes gives AppErrors that reach the HTTP layer an API error
var appErrorCodes = map[ErrorType]*APIError{
	ErrTypeValidation: ErrValidationFailed,
	ErrTypeParsing:    ErrValidationFailed,
	ErrTypeNotFound:   ErrNotFound,
	ErrTypeExport:     ErrExportFailed,
	ErrTypeStorage:    ErrDatasetUnavailable,
}

// ErrorHandler renders every failure as an RFC 7807 problem document
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler. includeStack adds the stack
// to responses and belongs in development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes the matching problem response
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r).WithExtension("trace_id", reqID)

	// Client errors are expected traffic
	level := slog.LevelError
	if problem.Status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}
	render.Render(w, r, problem)
}

// ErrorToProblem classifies err. Deadlines map to 504, API errors keep their
// status, AppErrors map by type and everything else is a 500 whose message
// is not exposed.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r.URL.Path)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if mapped, ok := appErrorCodes[appErr.Type]; ok {
			problem := apiErrorToProblem(mapped, r)
			if mapped.StatusCode < http.StatusInternalServerError {
				problem.Detail = appErr.Message
			}
			return problem
		}
	}

	return NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred while processing your request", r.URL.Path)
}

func apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType, ok := problemTypes[apiErr.ErrorCode]
	if !ok {
		problemType = TypeInternal
	}

	problem := NewProblemDetails(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode),
		apiErr.Message, r.URL.Path).
		WithExtension("error_code", apiErr.ErrorCode)
	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// Recover turns a panic below it into a 500 problem response
func (h *ErrorHandler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.HandlePanic(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// HandlePanic logs a recovered panic with its stack and writes a 500
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())
	stack := string(debug.Stack())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", stack),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r.URL.Path).
		WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stack)
	}
	render.Render(w, r, problem)
}

// NotFound is the router's handler for unknown paths
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}

// MethodNotAllowed is the router's handler for known paths hit with the wrong method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, NewProblemDetails(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context())))
}
