package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/services"
	"taskdash/pkg/contracts/domain"
)

func newTaskServer(t *testing.T, svc *MockDashboardService) http.Handler {
	t.Helper()
	deps := newTestDeps(t)
	return NewTaskHandler(svc, deps.validation, deps.logger, deps.errorHandler).Routes()
}

func TestTaskHandler_ListTasks(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Tasks", anyCtx, domain.TaskFilter{ContentType: "Blog Post"}).Return(domain.TaskTable{
		Tasks:   []domain.Task{{ID: 3, Name: "Launch post"}},
		Shown:   1,
		Total:   6,
		Caption: "Showing 1 of 6 tasks",
	}, nil)

	rec := httptest.NewRecorder()
	newTaskServer(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?content_type=Blog+Post", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "Showing 1 of 6 tasks", body["caption"])
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 6, body["total"])
	assert.Len(t, body["data"], 1)
	svc.AssertExpectations(t)
}

func TestTaskHandler_GetTask(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "found",
			path: "/3",
			setupMock: func(m *MockDashboardService) {
				m.On("Task", anyCtx, 3).Return(domain.TaskDetail{
					Task:              domain.Task{ID: 3},
					CompletionMessage: "Completed in 4 days",
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown id",
			path: "/99",
			setupMock: func(m *MockDashboardService) {
				m.On("Task", anyCtx, 99).Return(domain.TaskDetail{}, fmt.Errorf("%w: 99", services.ErrTaskNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "TASK_NOT_FOUND",
		},
		{
			name:           "non numeric id",
			path:           "/abc",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
		{
			name:           "zero id",
			path:           "/0",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			newTaskServer(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, rec.Body.Bytes()))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_GetTaskMessages(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("TaskMessages", anyCtx, 4).Return(domain.CommunicationHistory{
		TaskID: 4,
		Notice: "No communication history",
	}, nil)

	rec := httptest.NewRecorder()
	newTaskServer(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/4/messages", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec.Body.Bytes())["data"].(map[string]interface{})
	assert.Equal(t, false, data["has_history"])
	assert.Equal(t, "No communication history", data["notice"])
	svc.AssertExpectations(t)
}
