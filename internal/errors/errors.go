// Package errors defines the structured error taxonomy shared by the profiler,
// its configuration layer, and the catalog sinks.
//
// Every failure that leaves the core carries one of the Code* values so the
// CLI can decide user-facing behavior (message, exit status) without string
// matching. The core itself never prints or exits.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes.
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeIO            = "IO_ERROR"
	CodeParse         = "PARSE_ERROR"
	CodeComputation   = "COMPUTATION_ERROR"
	CodeStorage       = "STORAGE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
	codeUnknown       = "UNKNOWN"
)

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message.
func Newf(code, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context. The code of a wrapped
// AppError is preserved; anything else becomes INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode attaches code to err, keeping err as the cause.
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:  code,
		Cause: err,
	}
}

// WithCodef builds an AppError with code whose cause is err.
func WithCodef(code string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// GetCode returns the code of the outermost AppError in err's chain,
// or "UNKNOWN".
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return codeUnknown
}

// HasCode reports whether err carries code.
func HasCode(err error, code string) bool {
	return err != nil && GetCode(err) == code
}

// Common error constructors

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ConfigInvalidf(format string, args ...any) *AppError {
	return Newf(CodeConfigInvalid, format, args...)
}

func IOError(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeIO,
		Message: fmt.Sprintf("read %s", path),
		Cause:   cause,
	}
}

func ParseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeParse,
		Message: message,
		Cause:   cause,
	}
}

func ComputationError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeComputation,
		Message: message,
		Cause:   cause,
	}
}

func StorageError(backend string, cause error) *AppError {
	return &AppError{
		Code:    CodeStorage,
		Message: fmt.Sprintf("%s catalog", backend),
		Cause:   cause,
	}
}
