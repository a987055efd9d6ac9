// Package errors provides structured error types for PadNest.
//
// Every failure the layout core can report before a file is written carries a
// machine-readable Code, so the CLI and the HTTP service can map it to an exit
// status or response without parsing messages.
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "spacing must be positive, got %g", s)
//	if errors.Is(err, errors.ErrCodeUnfittableLayout) {
//	    // nothing was written
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input errors
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidPadLine       Code = "INVALID_PAD_LINE"
	ErrCodeInvalidMaterial      Code = "INVALID_MATERIAL"
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"

	// Layout errors
	ErrCodeUnfittableLayout   Code = "UNFITTABLE_LAYOUT"
	ErrCodeOversizedEngraving Code = "OVERSIZED_ENGRAVING"

	// Output errors
	ErrCodeIO Code = "IO_ERROR"
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
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values,
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// UnfittableError reports that the discs of one material do not all fit on
// the sheet. It unwraps to an *Error with ErrCodeUnfittableLayout.
type UnfittableError struct {
	Material string
	Placed   int
	Total    int
}

// Error implements the error interface.
func (e *UnfittableError) Error() string {
	return fmt.Sprintf("%s: %s: only %d of %d discs fit on the sheet",
		ErrCodeUnfittableLayout, e.Material, e.Placed, e.Total)
}

// Unwrap exposes the coded form so Is(err, ErrCodeUnfittableLayout) holds.
func (e *UnfittableError) Unwrap() error {
	return New(ErrCodeUnfittableLayout, "%s does not fit", e.Material)
}
