package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	apierrors "taskdash/internal/errors"
	"taskdash/pkg/contracts/domain"
)

// ValidationMiddleware binds query parameters onto tagged structs and
// validates them with struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ValidationMiddleware {
	v := validator.New()

	v.RegisterValidation("tablename", isValidTableName)

	// Report fields by their query parameter name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("query"); name != "" {
			return name
		}
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator:    v,
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  1024 * 1024,
	}
}

// ValidateRequest rejects oversized or malformed JSON bodies on mutating
// requests
func (m *ValidationMiddleware) ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > m.maxBodySize {
			m.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
				"Request body exceeds maximum allowed size",
				map[string]interface{}{
					"max_size": m.maxBodySize,
					"size":     r.ContentLength,
				},
			))
			return
		}

		if r.Body != nil && r.ContentLength > 0 {
			body, err := io.ReadAll(io.LimitReader(r.Body, m.maxBodySize))
			if err != nil {
				m.logger.ErrorContext(r.Context(), "failed to read request body",
					slog.String("error", err.Error()),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				m.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 && !json.Valid(body) {
				m.errorHandler.HandleError(w, r, apierrors.New(
					http.StatusBadRequest,
					"INVALID_JSON",
					"Request body contains invalid JSON",
				))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: m.formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// BindQuery copies query parameters onto the string and int fields of dst
// carrying a `query` tag, then validates dst. dst must be a struct pointer.
func (m *ValidationMiddleware) BindQuery(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind query: destination must be a struct pointer, got %T", dst)
	}

	query := r.URL.Query()
	elem := rv.Elem()
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		name := typ.Field(i).Tag.Get("query")
		if name == "" || !query.Has(name) {
			continue
		}
		raw := strings.TrimSpace(query.Get(name))
		field := elem.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Int:
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return apierrors.ErrValidation(name, fmt.Sprintf("%s must be a valid integer", name))
			}
			field.SetInt(int64(n))
		}
	}

	return m.ValidateStruct(dst)
}

// ParseTaskFilter binds and validates the dashboard filter of a request,
// including the ordering of the date range
func (m *ValidationMiddleware) ParseTaskFilter(r *http.Request) (domain.TaskFilter, error) {
	var filter domain.TaskFilter
	if err := m.BindQuery(r, &filter); err != nil {
		return domain.TaskFilter{}, err
	}
	if _, _, err := filter.DateRange(); err != nil {
		return domain.TaskFilter{}, apierrors.ErrInvalidFilter.WithDetails(map[string]interface{}{
			"from":   filter.From,
			"to":     filter.To,
			"reason": err.Error(),
		})
	}
	return filter, nil
}

// ParseTrendParams binds the efficiency trend options
func (m *ValidationMiddleware) ParseTrendParams(r *http.Request) (domain.TrendParams, error) {
	var params domain.TrendParams
	if err := m.BindQuery(r, &params); err != nil {
		return domain.TrendParams{}, err
	}
	return params, nil
}

// ParseExportParams binds the export format, defaulting to CSV
func (m *ValidationMiddleware) ParseExportParams(r *http.Request) (domain.ExportParams, error) {
	var params domain.ExportParams
	if err := m.BindQuery(r, &params); err != nil {
		return domain.ExportParams{}, err
	}
	if params.Format == "" {
		params.Format = domain.FormatCSV
	}
	return params, nil
}

// ValidateTableName checks a table identifier taken from the URL path
func (m *ValidationMiddleware) ValidateTableName(name string) error {
	if err := m.validator.Var(name, "required,tablename"); err != nil {
		return apierrors.ErrValidation("table", "table must be a valid table name")
	}
	return nil
}

// formatValidationError formats validation error messages
func (m *ValidationMiddleware) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "tablename":
		return fmt.Sprintf("%s must be a valid table name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidTableName accepts table slugs such as team_members, rejecting
// anything that could escape the data directory
func isValidTableName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || len(name) > 64 {
		return false
	}
	for _, ch := range name {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-') {
			return false
		}
	}
	return true
}
