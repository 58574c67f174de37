package users

import (
	"errors"
	"fmt"
)

// ValidationError represents errors in request validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NotFoundError is returned when the addressed user id does not exist
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.ID)
}

// NewNotFoundError creates an error for a missing user
func NewNotFoundError(id int64) *NotFoundError {
	return &NotFoundError{ID: id}
}

// StorageError represents errors related to storage operations
type StorageError struct {
	Type      string
	Operation string
	Resource  string
	Message   string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error [%s] during %s on %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error [%s] during %s on %s: %s",
		e.Type, e.Operation, e.Resource, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Storage error types
const (
	StorageErrorTypeParseFailed = "parse_failed"
	StorageErrorTypeIOFailed    = "io_failed"
)

// NewParseError creates an error for stored contents that are not a valid collection
func NewParseError(operation, resource string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeParseFailed,
		Operation: operation,
		Resource:  resource,
		Message:   "stored collection is not valid",
		Cause:     cause,
	}
}

// NewIOError creates an error for failed reads or writes of the storage location
func NewIOError(operation, resource string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeIOFailed,
		Operation: operation,
		Resource:  resource,
		Message:   "storage access failed",
		Cause:     cause,
	}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsParseError(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Type == StorageErrorTypeParseFailed
}

func IsIOError(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Type == StorageErrorTypeIOFailed
}
