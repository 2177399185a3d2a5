// Package apperr is the error taxonomy the commerce core reports through.
// Handlers translate the four kinds to HTTP status codes with HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal error")
)

// InvalidRequest marks malformed or missing input. Never retried.
func InvalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// NotFound marks a record that does not exist or is not visible to the caller.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflict marks a status transition outside the allowed table.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Internal wraps a persistence failure. Safe to retry: core mutations either
// roll back fully or are idempotent.
func Internal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
