package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusNotFound, "TASK_NOT_FOUND", "Task not found")

	assert.Equal(t, "Task not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Nil(t, err.Details)

	var target *APIError
	wrapped := fmt.Errorf("lookup: %w", err)
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, "TASK_NOT_FOUND", target.ErrorCode)
}

func TestAPIError_WithDetailsCopies(t *testing.T) {
	detailed := ErrTableNotFound.WithDetails("budget")

	assert.Equal(t, "budget", detailed.Details)
	assert.Nil(t, ErrTableNotFound.Details, "predefined error must not change")
	assert.Equal(t, ErrTableNotFound.ErrorCode, detailed.ErrorCode)
	assert.Equal(t, ErrTableNotFound.StatusCode, detailed.StatusCode)
}

func TestPredefinedStatusCodes(t *testing.T) {
	tests := []struct {
		err  *APIError
		want int
	}{
		{ErrInvalidFilter, http.StatusBadRequest},
		{ErrTaskNotFound, http.StatusNotFound},
		{ErrTableNotFound, http.StatusNotFound},
		{ErrUnsupportedFormat, http.StatusNotAcceptable},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{ErrExportFailed, http.StatusInternalServerError},
		{ErrDatasetUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.err.ErrorCode, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode)
		})
	}
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("from", "must be YYYY-MM-DD")

	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	assert.Equal(t, ValidationError{Field: "from", Message: "must be YYYY-MM-DD"}, err.Details)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{{Field: "project"}, {Field: "to"}})

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("project timelines document")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "NOT_FOUND", err.ErrorCode)
	assert.Equal(t, "project timelines document not found", err.Error())
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeTaskNotFound, "Not Found", "task 9", "/api/tasks/9").
		WithExtension("trace_id", "abc").
		WithExtension("status", 200)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeTaskNotFound, got["type"])
	assert.Equal(t, "task 9", got["detail"])
	assert.Equal(t, "/api/tasks/9", got["instance"])
	assert.Equal(t, "abc", got["trace_id"])
	assert.EqualValues(t, 404, got["status"], "extensions must not override standard members")
}

func TestProblemDetails_OmitsEmptyMembers(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "x", Status: 500})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "detail")
	assert.NotContains(t, string(data), "instance")
}
