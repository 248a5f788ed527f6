package engine

import (
	"errors"
	"fmt"
)

// Error is the error type returned by every engine operation.
//
// Error kinds:
//   - Not found: an operation referenced a record id that does not exist
//   - Validation: a cross-client reorder or an unusable client label
//   - Storage: the store failed or rolled back; Err holds the cause
//
// The transaction of the failing operation has always been rolled back when
// an Error is returned, so no partial order-field updates are visible.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID identifies the affected record, when there is one.
	ID int64

	// Err is the underlying cause (storage errors only).
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates an operation referenced a nonexistent record.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeValidation indicates the request itself is not acceptable.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeStorage indicates the store failed.
	ErrCodeStorage ErrorCode = "STORAGE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.ID != 0 {
		return fmt.Sprintf("%s: %s (id=%d)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying storage error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err is a not-found engine error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation returns true if err is a validation engine error.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsStorage returns true if err is a storage engine error.
func IsStorage(err error) bool {
	return hasCode(err, ErrCodeStorage)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// NewNotFoundError creates an Error for a missing record.
func NewNotFoundError(id int64) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: "record not found",
		ID:      id,
	}
}

// NewValidationError creates an Error for a rejected request.
func NewValidationError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewStorageError wraps a store failure.
func NewStorageError(op string, err error) *Error {
	return &Error{
		Code:    ErrCodeStorage,
		Message: op,
		Err:     err,
	}
}

// asEngineError passes engine errors through unchanged and wraps anything
// else as a storage error for op.
func asEngineError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return NewStorageError(op, err)
}
