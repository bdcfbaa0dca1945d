// Package errors provides domain-specific errors for the cmdrunner application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrManifestRead        = errors.New("could not read manifest")
	ErrManifestParse       = errors.New("could not parse manifest")
	ErrNoCommandsTable     = errors.New("no commands table found")
	ErrAmbiguousScope      = errors.New("commands table defined in both package and workspace scope")
	ErrCommandNotFound     = errors.New("command not found")
	ErrCommandNameRequired = errors.New("command name required")
	ErrRunIDRequired       = errors.New("run ID required")
	ErrRunCommandRequired  = errors.New("run command required")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeManifest      ErrorCode = "MANIFEST"
	CodeExecution     ErrorCode = "EXECUTION"
	CodeStorage       ErrorCode = "STORAGE"
	CodeConfiguration ErrorCode = "CONFIG"
)

// CmdrunnerError wraps errors with additional context for debugging and handling.
type CmdrunnerError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *CmdrunnerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *CmdrunnerError) Unwrap() error {
	return e.Cause
}

// NewError creates a new CmdrunnerError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *CmdrunnerError {
	return &CmdrunnerError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding multiple context values.
func WithContext(err *CmdrunnerError, key string, value interface{}) *CmdrunnerError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// Is reports whether err matches target using errors.Is semantics.
// This is a convenience wrapper around the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
// This is a convenience wrapper around the standard library's errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
