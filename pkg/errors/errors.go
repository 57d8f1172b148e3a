// Package errors provides structured error types for tileorg.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the core, the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - CAPACITY_EXCEEDED, SLOT_OCCUPIED: Slot allocation failures
//   - NOT_FOUND: Unknown stream, slot or attendee
//   - NETWORK_*, INTERNAL_*: Sink and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCapacityExceeded, "no free slot for stream %d", id)
//	if errors.Is(err, errors.ErrCodeCapacityExceeded) {
//	    // Refuse the bind
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "publish frame to %s", channel)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSurface  Code = "INVALID_SURFACE"
	ErrCodeInvalidSlot     Code = "INVALID_SLOT"
	ErrCodeInvalidCapacity Code = "INVALID_CAPACITY"
	ErrCodeInvalidAttendee Code = "INVALID_ATTENDEE"
	ErrCodeInvalidScenario Code = "INVALID_SCENARIO"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Allocation errors
	ErrCodeCapacityExceeded Code = "CAPACITY_EXCEEDED"
	ErrCodeSlotOccupied     Code = "SLOT_OCCUPIED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Sink errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err carries one of the INVALID_* codes.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidSurface, ErrCodeInvalidSlot,
		ErrCodeInvalidCapacity, ErrCodeInvalidAttendee, ErrCodeInvalidScenario,
		ErrCodeInvalidFormat:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
