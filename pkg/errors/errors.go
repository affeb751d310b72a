package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a facility, class, session or booking was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeInvalidArgument indicates a caller supplied a bad date, duration or range
	ErrorTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"

	// ErrorTypeConflict indicates the write would overlap existing bookings or exceed capacity
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInternal indicates a datastore or infrastructure failure
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidArgument,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf adds context to err. The type of an AppError found in the chain is kept,
// anything else becomes INTERNAL.
func Wrapf(err error, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:    TypeOf(err),
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, INTERNAL otherwise.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsNotFound reports whether err carries ErrorTypeNotFound
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsConflict reports whether err carries ErrorTypeConflict
func IsConflict(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeConflict
}
