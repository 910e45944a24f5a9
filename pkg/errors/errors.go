// Package errors provides the structured error taxonomy of the case store.
//
// Every failure surfaced by the datasheet, dictionary and sheet adapters is an
// *Error carrying an ErrorType. Bounds and shape errors are local and
// recoverable; I/O errors fail an individual operation on a handle that stays
// usable. Lossy value conversion across a width change is not an error.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeBounds represents a row or column index outside the current extent
	ErrorTypeBounds ErrorType = "bounds"
	// ErrorTypeShape represents a value or case that does not match the prototype
	ErrorTypeShape ErrorType = "shape"
	// ErrorTypeIO represents a paging backend or source reader failure
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeConflict represents a name collision inside a dictionary
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeValidation represents rejected arguments
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConsumed represents use of a handle after ownership moved away
	ErrorTypeConsumed ErrorType = "consumed"
	// ErrorTypeConversion represents text that cannot be read with a format
	ErrorTypeConversion ErrorType = "conversion"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// Bounds reports an index outside [0, limit).
func Bounds(what string, index, limit int) *Error {
	return &Error{
		Type:    ErrorTypeBounds,
		Message: fmt.Sprintf("%s %d out of range [0, %d)", what, index, limit),
		Stack:   captureStack(2),
		Details: map[string]interface{}{"index": index, "limit": limit},
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// IsBounds reports whether err is a bounds error.
func IsBounds(err error) bool { return IsType(err, ErrorTypeBounds) }

// IsShape reports whether err is a shape mismatch.
func IsShape(err error) bool { return IsType(err, ErrorTypeShape) }

// IsIO reports whether err is a paging or reader failure.
func IsIO(err error) bool { return IsType(err, ErrorTypeIO) }

// IsConflict reports whether err is a name conflict.
func IsConflict(err error) bool { return IsType(err, ErrorTypeConflict) }

// IsConsumed reports whether err comes from a consumed handle.
func IsConsumed(err error) bool { return IsType(err, ErrorTypeConsumed) }

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
