package services

import "errors"

// Service errors, mapped to API errors by the HTTP handlers
var (
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
)
