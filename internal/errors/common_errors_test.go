package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewStorageError("write export", cause).WithContext("path", "/tmp/x.csv")

	assert.Equal(t, "[STORAGE] write export: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "/tmp/x.csv", err.Context["path"])
	assert.Equal(t, "[NOT_FOUND] table budget not found", NewNotFoundError("table budget").Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "plain", err: errors.New("x"), want: ExitFailure},
		{name: "config", err: NewConfigError("bad port", nil), want: ExitConfig},
		{name: "validation", err: NewAppValidationError("unknown format"), want: ExitUsage},
		{name: "not found", err: NewNotFoundError("table"), want: ExitNotFound},
		{name: "wrapped export", err: fmt.Errorf("run: %w", NewExportError("xlsx", nil)), want: ExitIO},
		{name: "storage", err: NewStorageError("mkdir", nil), want: ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
