package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for assistant operations.
type ErrorCode string

const (
	// ErrCodeUnparseable indicates a temporal phrase with no recognizable pattern.
	ErrCodeUnparseable ErrorCode = "UNPARSEABLE"
	// ErrCodeAmbiguous indicates a temporal phrase with multiple equally plausible readings.
	ErrCodeAmbiguous ErrorCode = "AMBIGUOUS"
	// ErrCodeInsufficientNotice indicates a start time inside the minimum notice window.
	ErrCodeInsufficientNotice ErrorCode = "INSUFFICIENT_NOTICE"
	// ErrCodeOutsideWorkingHours indicates a slot outside the configured working hours.
	ErrCodeOutsideWorkingHours ErrorCode = "OUTSIDE_WORKING_HOURS"
	// ErrCodeConflict indicates an overlap with an existing scheduled appointment.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeNotFound indicates no scheduled appointment matches the cancel target.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates audio input timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodePersistenceFailure indicates a store-level I/O or backend error.
	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
)

// AssistantError is a structured error carrying a code and optional context.
type AssistantError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *AssistantError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AssistantError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *AssistantError) WithContext(key string, value any) *AssistantError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *AssistantError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// Unparseable creates an unparseable-phrase error.
func Unparseable(phrase string) *AssistantError {
	return &AssistantError{
		Code:    ErrCodeUnparseable,
		Message: fmt.Sprintf("no temporal pattern recognized in %q", phrase),
	}
}

// Ambiguous creates an ambiguous-phrase error.
func Ambiguous(phrase string) *AssistantError {
	return &AssistantError{
		Code:    ErrCodeAmbiguous,
		Message: fmt.Sprintf("multiple readings for %q", phrase),
	}
}

// InsufficientNotice creates an insufficient-notice violation.
func InsufficientNotice(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeInsufficientNotice, Message: msg}
}

// OutsideWorkingHours creates a working-hours violation.
func OutsideWorkingHours(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeOutsideWorkingHours, Message: msg}
}

// Conflict creates a conflict violation naming the blocking appointment.
func Conflict(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeConflict, Message: msg}
}

// NotFound creates a not-found error for a missing cancel target.
func NotFound(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeNotFound, Message: msg}
}

// Timeout creates a listening timeout error.
func Timeout(msg string) *AssistantError {
	return &AssistantError{Code: ErrCodeTimeout, Message: msg}
}

// PersistenceFailure wraps a store backend error.
func PersistenceFailure(cause error) *AssistantError {
	return &AssistantError{Code: ErrCodePersistenceFailure, Message: "store operation failed", Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *AssistantError {
	return &AssistantError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error carries a specific code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var ae *AssistantError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an AssistantError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var ae *AssistantError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return defaultCode
}
