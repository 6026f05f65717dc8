package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with classification metadata.
type Error struct {
	// Code is the machine-readable error code (e.g., ERR_301_CACHE_SHAPE_MISMATCH).
	Code string

	// Message is the human-readable error description.
	Message string

	// Category classifies the error.
	Category Category

	// Severity indicates how the error should be handled.
	Severity Severity

	// Details provides additional context (file, line number, etc.).
	Details map[string]any

	// Cause is the underlying error, if any.
	Cause error

	// Recoverable indicates the caller may degrade or recompute instead of
	// aborting.
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetail attaches a key/value pair to the error's details.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a structured error from a code and message.
func New(code, message string) *Error {
	return &Error{
		Code:        code,
		Message:     message,
		Category:    categoryFromCode(code),
		Severity:    severityFromCode(code),
		Recoverable: isRecoverableCode(code),
	}
}

// Newf creates a structured error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a structured error wrapping an underlying cause.
func Wrap(code, message string, cause error) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// IsCode reports whether err (or any error it wraps) carries the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsRecoverable reports whether err is a structured error the caller can
// recover from by degrading or recomputing. Plain errors are not recoverable.
func IsRecoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Recoverable
	}
	return false
}

// CategoryOf returns the category of a structured error, or CategoryInternal
// for plain errors.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryInternal
}
