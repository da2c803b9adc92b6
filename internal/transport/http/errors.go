package http

import (
	"errors"

	apierrors "taskdash/internal/errors"
	"taskdash/internal/services"
)

// mapServiceError converts service sentinels into API errors. Anything else
// is passed through for the error handler to classify.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return apierrors.ErrTaskNotFound.WithDetails(err.Error())
	case errors.Is(err, services.ErrTableNotFound):
		return apierrors.ErrTableNotFound.WithDetails(err.Error())
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrUnsupportedFormat.WithDetails(err.Error())
	case errors.Is(err, services.ErrInvalidFilter):
		return apierrors.ErrInvalidFilter.WithDetails(err.Error())
	case errors.Is(err, services.ErrDatasetUnavailable):
		return apierrors.ErrDatasetUnavailable.WithDetails(err.Error())
	default:
		return err
	}
}
