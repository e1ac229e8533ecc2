// Package errors provides a lightweight structured error type (BinderError)
// for category-based classification across the binder pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a binder error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Pipeline stage errors
	CategoryScan     ErrorCategory = "scan"
	CategoryRender   ErrorCategory = "render"
	CategoryFormat   ErrorCategory = "format"
	CategoryMerge    ErrorCategory = "merge"
	CategoryAnnotate ErrorCategory = "annotate"
	CategoryOutput   ErrorCategory = "output"

	// Runtime and infrastructure errors
	CategoryStore    ErrorCategory = "store"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the run
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BinderError is a structured error with category, severity, and context
type BinderError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BinderError
type ContextFields map[string]any

// Error implements the error interface
func (e *BinderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BinderError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error should abort the whole run.
func (e *BinderError) IsFatal() bool {
	return e.Severity == SeverityFatal
}

// WithContext adds context information to the error
func (e *BinderError) WithContext(key string, value any) *BinderError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BinderError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BinderError {
	return &BinderError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BinderError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BinderError {
	return &BinderError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
