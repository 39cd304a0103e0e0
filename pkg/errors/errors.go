// Package errors provides structured error types for gifshuffle.
//
// This package defines error codes and types that enable:
//   - A closed vocabulary of transform failure kinds that crosses the host boundary
//   - Machine-readable error codes for the CLI and HTTP API
//   - User-friendly error messages via a static lookup table
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Transform kinds (OutOfMemory, NoSpaceLeft, WrongHeader, UnknownBlock,
// UnknownExtensionBlock, MissingColorTable, BlockAndStreamEndMismatch) are
// written in CamelCase because their identifiers are handed to hosts verbatim.
// Codes owned by the CLI and server follow the INVALID_* / INTERNAL_* style and
// never leave the process through the transform boundary.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeWrongHeader, "signature %q", sig)
//	if errors.Is(err, errors.ErrCodeWrongHeader) {
//	    // Handle a non-GIF input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeOutOfMemory, origErr, "acquire %d bytes", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Transform kinds. The set is closed.
const (
	// Resource failures
	ErrCodeOutOfMemory Code = "OutOfMemory"
	ErrCodeNoSpaceLeft Code = "NoSpaceLeft"

	// Input validation failures
	ErrCodeWrongHeader               Code = "WrongHeader"
	ErrCodeUnknownBlock              Code = "UnknownBlock"
	ErrCodeUnknownExtensionBlock     Code = "UnknownExtensionBlock"
	ErrCodeMissingColorTable         Code = "MissingColorTable"
	ErrCodeBlockAndStreamEndMismatch Code = "BlockAndStreamEndMismatch"
)

// Codes used by the CLI, configuration and HTTP layers.
const (
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
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
// For transform kinds the static message table is used; for other *Error
// values the message without the code prefix; anything else as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if IsKind(e.Code) {
			return messages[e.Code]
		}
		return e.Message
	}
	return err.Error()
}
