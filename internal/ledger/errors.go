package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrUniquenessConflict is returned by a persistence attempt when the
	// sale_number it tried to commit was taken by a concurrent writer.
	ErrUniquenessConflict = errors.New("sale number already taken")

	// ErrAllocationExhausted means every allocation attempt collided.
	ErrAllocationExhausted = errors.New("could not allocate a unique sale number")
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a store failure unrelated to data validity.
// Transient is set when the failure came from the connection or from a
// serialization conflict, so re-sending the same request may succeed.
type PersistenceError struct {
	Op        string
	Err       error
	Transient bool
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Retryable reports whether re-invoking the whole operation may succeed.
func (e *PersistenceError) Retryable() bool { return e.Transient }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
