package services

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/pollstream/pollstream-api/internal/apperrors"
)

// logged wraps a service operation with uniform failure logging so every
// method reports errors the same way without hand-duplicated log calls.
// Domain rejections log at warn, everything else at error.
func logged[T any](log *log.Logger, operation string, fn func() (T, error)) (T, error) {
	result, err := fn()
	if err == nil {
		return result, nil
	}

	if errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrConflict) {
		log.Warn("operation rejected", "operation", operation, "error", err)
	} else {
		log.Error("operation failed", "operation", operation, "error", err)
	}
	return result, err
}
