// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification across the build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a build error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Content processing errors
	CategoryIngest ErrorCategory = "ingest"

	// Plugin phase errors
	CategoryBundle    ErrorCategory = "bundle"
	CategoryResolve   ErrorCategory = "resolve"
	CategoryPrerender ErrorCategory = "prerender"

	// Runtime and infrastructure errors
	CategoryServer     ErrorCategory = "server"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BuildError is a structured error with category, severity, and context
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// WithCause attaches an underlying cause to the error
func (e *BuildError) WithCause(cause error) *BuildError {
	e.Cause = cause
	return e
}

// New creates a BuildError with the given category and message
func New(category ErrorCategory, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: SeverityFatal,
		Message:  message,
	}
}

// Wrap wraps an existing error into a BuildError
func Wrap(err error, category ErrorCategory, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: SeverityFatal,
		Message:  message,
		Cause:    err,
	}
}
