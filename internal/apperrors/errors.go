// Package apperrors defines the error taxonomy shared across services,
// repositories and HTTP handlers. Handlers translate these sentinels into
// status codes with errors.Is; everything else wraps them with context.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the request referenced entities that do not
	// belong together or carried malformed fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness conflict that must surface to the
	// caller (e.g. duplicate email). Conflicts on idempotent inserts are
	// absorbed inside repositories and never carry this sentinel.
	ErrConflict = errors.New("conflict")

	// ErrTransient indicates a store-level failure (lock timeout, broken
	// connection) where retrying the whole operation is safe.
	ErrTransient = errors.New("transient store error")
)

// NotFound wraps ErrNotFound with a message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Validation wraps ErrValidation with a message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Conflict wraps ErrConflict with a message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// Transient wraps ErrTransient around an underlying store error.
func Transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
