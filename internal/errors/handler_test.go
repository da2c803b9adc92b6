package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{name: "task not found", err: ErrTaskNotFound, wantStatus: http.StatusNotFound, wantType: TypeTaskNotFound},
		{name: "wrapped table not found", err: fmt.Errorf("export: %w", ErrTableNotFound.WithDetails("budget")), wantStatus: http.StatusNotFound, wantType: TypeTableNotFound},
		{name: "invalid filter", err: ErrInvalidFilter, wantStatus: http.StatusBadRequest, wantType: TypeInvalidFilter},
		{name: "validation", err: ErrValidation("to", "bad"), wantStatus: http.StatusBadRequest, wantType: TypeValidation},
		{name: "unsupported format", err: ErrUnsupportedFormat, wantStatus: http.StatusNotAcceptable, wantType: TypeUnsupportedFormat},
		{name: "dataset unavailable", err: ErrDatasetUnavailable, wantStatus: http.StatusServiceUnavailable, wantType: TypeDatasetUnavailable},
		{name: "deadline", err: fmt.Errorf("load: %w", context.DeadlineExceeded), wantStatus: http.StatusGatewayTimeout, wantType: TypeTimeout},
		{name: "app not found", err: NewNotFoundError("timelines document"), wantStatus: http.StatusNotFound, wantType: TypeNotFound},
		{name: "app export failure", err: NewExportError("export tasks", errors.New("disk full")), wantStatus: http.StatusInternalServerError, wantType: TypeExportFailed},
		{name: "app storage failure", err: NewStorageError("read tasks.csv", errors.New("permission denied")), wantStatus: http.StatusServiceUnavailable, wantType: TypeDatasetUnavailable},
		{name: "config failure is internal", err: NewConfigError("bad yaml", nil), wantStatus: http.StatusInternalServerError, wantType: TypeInternal},
		{name: "unknown", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantType: TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			r := httptest.NewRequest(http.MethodGet, "/api/tasks/9", nil)
			w := httptest.NewRecorder()
			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/tasks/9", body["instance"])
			assert.NotContains(t, body, "stack")

			wantLevel := slog.LevelWarn
			if tt.wantStatus >= 500 {
				wantLevel = slog.LevelError
			}
			testutil.AssertLogContains(t, logs, wantLevel, "request failed")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	w := httptest.NewRecorder()

	NewErrorHandler(logger, false).HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logs.Count())
}

func TestErrorHandler_APIErrorDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/api/data/x", nil), ErrTableNotFound.WithDetails("x"))

	body := decodeProblem(t, w)
	assert.Equal(t, "TABLE_NOT_FOUND", body["error_code"])
	assert.Equal(t, "x", body["details"])
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(handler.Recover)
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("aggregation exploded")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeInternal, body["type"])
	assert.NotEmpty(t, body["trace_id"])
	assert.NotContains(t, body, "panic")
	testutil.AssertLogContains(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	router := chi.NewRouter()
	router.NotFound(handler.NotFound)
	router.MethodNotAllowed(handler.MethodNotAllowed)
	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, decodeProblem(t, w)["detail"], "DELETE")
}

func TestErrorHandler_AppErrorDetail(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/api/projects/timelines", nil),
		fmt.Errorf("timelines: %w", NewNotFoundError("project timelines document")))

	body := decodeProblem(t, w)
	assert.Equal(t, "NOT_FOUND", body["error_code"])
	assert.Equal(t, "project timelines document not found", body["detail"])
}

func TestErrorHandler_InternalDetailHidden(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/api/summary", nil),
		NewExportError("export summary as xlsx", errors.New("/var/data/secret path")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret path")
	testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
}

func TestErrorHandler_RecoverRethrowsAbort(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false).Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
