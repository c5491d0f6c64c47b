package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrMalformedDocument marks input bytes that cannot be parsed as a PDF.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrCorruptStore marks a persisted store whose contents are unreadable.
	// It is fatal to any store operation and is never silently reset to empty.
	ErrCorruptStore = errors.New("corrupt report store")
	// ErrIndexOutOfRange marks a request for a record that does not exist.
	ErrIndexOutOfRange = errors.New("report index out of range")
	// ErrInvalidInput marks rejected caller input (missing file, bad name).
	ErrInvalidInput = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
