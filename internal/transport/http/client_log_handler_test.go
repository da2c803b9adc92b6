package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskdash/internal/shared/testutil"
)

func TestClientLogHandler_Handle(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedCode   string
		expectedLevel  slog.Level
		expectedMsg    string
	}{
		{
			name:           "warn entry",
			body:           `{"level":"warn","message":"chart failed to render","source":"dashboard.js"}`,
			expectedStatus: http.StatusOK,
			expectedLevel:  slog.LevelWarn,
			expectedMsg:    "chart failed to render",
		},
		{
			name:           "missing level logs at info",
			body:           `{"message":"filters changed"}`,
			expectedStatus: http.StatusOK,
			expectedLevel:  slog.LevelInfo,
			expectedMsg:    "filters changed",
		},
		{
			name:           "malformed json",
			body:           `{"message":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:           "missing message",
			body:           `{"level":"info"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "unknown level",
			body:           `{"level":"fatal","message":"x"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t)
			handler := NewClientLogHandler(deps.validation, deps.logger, deps.errorHandler)

			req := httptest.NewRequest(http.MethodPost, "/api/client-logs", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.Handle(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, rec.Body.Bytes()))
				return
			}
			assert.Equal(t, true, decodeBody(t, rec.Body.Bytes())["success"])
			testutil.AssertLogContains(t, deps.logs, tt.expectedLevel, tt.expectedMsg)
			assert.True(t, deps.logs.ContainsAttr("handler", "client_log"))
		})
	}
}
