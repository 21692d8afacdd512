// Package errors provides structured error types for deptree.
//
// Errors carry a machine-readable [Code] so callers can tell a data-quality
// problem in the snapshot (an unparseable requirement line, a malformed row)
// apart from a genuine failure (an unreadable file). Data-quality errors are
// collected as diagnostics and never abort a run.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: a value in the snapshot does not match its grammar
//   - NOT_FOUND / FILE_NOT_FOUND: a requested resource does not exist
//   - DUPLICATE_* / NAME_COLLISION: identity conflicts in the snapshot
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRequirement, "no version pin in %q", line)
//	if errors.Is(err, errors.ErrCodeInvalidRequirement) {
//	    // record as diagnostic
//	}
//
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open %s", path)
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidRow         Code = "INVALID_ROW"
	ErrCodeInvalidRequirement Code = "INVALID_REQUIREMENT"
	ErrCodeInvalidSource      Code = "INVALID_SOURCE"
	ErrCodeInvalidJSON        Code = "INVALID_JSON"
	ErrCodeInvalidFlag        Code = "INVALID_FLAG"
	ErrCodeInvalidEcosystem   Code = "INVALID_ECOSYSTEM"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"

	// Identity conflicts
	ErrCodeDuplicateRepo Code = "DUPLICATE_REPO"
	ErrCodeNameCollision Code = "NAME_COLLISION"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
