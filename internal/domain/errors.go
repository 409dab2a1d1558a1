package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the core error taxonomy. Repositories map driver
// failures onto these; services and the CLI match with errors.Is.
var (
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate
	// invoice number. The caller must choose a new number; conflicts are
	// never auto-resolved.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates a referenced record (client, project, job,
	// invoice) does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a structurally invalid entity, such as a line
// item with a negative quantity or rate.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation: %s", e.Message)
}

// StorageError wraps an underlying persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsValidation returns true if the error is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorage returns true if the error is a storage error.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
