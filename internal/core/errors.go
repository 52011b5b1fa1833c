package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatAuth        ErrorCategory = "auth"        // Authentication rejection, fatal to the request
	ErrCatAnalyzer    ErrorCategory = "analyzer"    // Per-analyzer failure, absorbed into the Finding
	ErrCatTimeout     ErrorCategory = "timeout"     // Analyzer or stage budget exceeded
	ErrCatAggregation ErrorCategory = "aggregation" // Zero successful findings
	ErrCatAudit       ErrorCategory = "audit"       // Audit append failure, logged and swallowed
	ErrCatMemory      ErrorCategory = "memory"      // Memory/personalization collaborator failure
	ErrCatValidation  ErrorCategory = "validation"  // Invalid input or configuration
	ErrCatInternal    ErrorCategory = "internal"    // Unexpected internal error
)

// DomainError represents a structured error from the pipeline.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// CategoryOf extracts the category from any error, or ErrCatInternal.
func CategoryOf(err error) ErrorCategory {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category
	}
	return ErrCatInternal
}

// ErrAuth creates an authentication error. The only category that surfaces
// to the caller as a pipeline-level failure.
func ErrAuth(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatAuth,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrAnalyzer creates a per-analyzer failure.
func ErrAnalyzer(source, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatAnalyzer,
		Code:      "ANALYZER_FAILED",
		Message:   message,
		Retryable: true,
		Details:   map[string]interface{}{"analyzer": source},
	}
}

// ErrAnalyzerTimeout creates a timeout error for an analyzer that exceeded
// its budget.
func ErrAnalyzerTimeout(source string, budget time.Duration) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      "ANALYZER_TIMEOUT",
		Message:   fmt.Sprintf("analyzer %s exceeded budget %s", source, budget),
		Retryable: true,
		Details:   map[string]interface{}{"analyzer": source, "budget": budget.String()},
	}
}

// ErrInsufficientData signals that zero analyzers succeeded. Converted by
// the aggregator into a degraded, unknown-severity result, never propagated.
func ErrInsufficientData(requestID string) *DomainError {
	return &DomainError{
		Category:  ErrCatAggregation,
		Code:      "INSUFFICIENT_DATA",
		Message:   "no analyzer produced a successful finding",
		Retryable: false,
		Details:   map[string]interface{}{"request_id": requestID},
	}
}

// ErrAuditWrite creates an audit append failure. Logged, never propagated.
func ErrAuditWrite(stage string, cause error) *DomainError {
	return &DomainError{
		Category:  ErrCatAudit,
		Code:      "AUDIT_WRITE_FAILED",
		Message:   fmt.Sprintf("appending audit event for stage %s", stage),
		Retryable: true,
		Cause:     cause,
	}
}

// ErrMemory creates a memory collaborator failure.
func ErrMemory(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatMemory,
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrInternal creates an unexpected internal error.
func ErrInternal(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatInternal,
		Code:      "INTERNAL",
		Message:   message,
		Retryable: false,
	}
}
