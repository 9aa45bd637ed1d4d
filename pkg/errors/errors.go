// Package errors provides standardized error types for the benchmark engine.
package errors

import (
	"errors"
	"fmt"
)

// Error codes distinguishing collaborator and harness failures.
const (
	CodeInvalidConfig     = "INVALID_CONFIG"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeQueryFailed       = "QUERY_FAILED"
	CodeTableNotFound     = "TABLE_NOT_FOUND"
	CodeSchemaMismatch    = "SCHEMA_MISMATCH"
	CodeMemoryExceeded    = "MEMORY_EXCEEDED"
	CodeDeadlineExceeded  = "DEADLINE_EXCEEDED"
	CodeConnectionFailed  = "CONNECTION_FAILED"
	CodeAggregationFailed = "AGGREGATION_FAILED"
	CodeInternal          = "INTERNAL_ERROR"
)

// BenchError represents a benchmark engine error with code, message, and optional details.
type BenchError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *BenchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *BenchError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *BenchError) Is(target error) bool {
	t, ok := target.(*BenchError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a single detail to the error.
func (e *BenchError) WithDetail(key string, value interface{}) *BenchError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors
var (
	ErrEmptyDataset     = &BenchError{Code: CodeInvalidRequest, Message: "cannot register empty dataset"}
	ErrTableNotFound    = &BenchError{Code: CodeTableNotFound, Message: "table not found"}
	ErrMemoryExceeded   = &BenchError{Code: CodeMemoryExceeded, Message: "memory limit exceeded"}
	ErrQueryTimeout     = &BenchError{Code: CodeDeadlineExceeded, Message: "query execution timeout"}
	ErrConnectionFailed = &BenchError{Code: CodeConnectionFailed, Message: "database connection failed"}
	ErrNoSamples        = &BenchError{Code: CodeAggregationFailed, Message: "all benchmark iterations failed"}
)

// New creates a new BenchError with the given code and message.
func New(code, message string) *BenchError {
	return &BenchError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new BenchError with a formatted message.
func Newf(code, format string, args ...interface{}) *BenchError {
	return &BenchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a BenchError.
func Wrap(err error, code, message string) *BenchError {
	if err == nil {
		return nil
	}
	return &BenchError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *BenchError {
	if err == nil {
		return nil
	}
	return &BenchError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsAggregationFailure checks if an error is an all-iterations-failed error.
func IsAggregationFailure(err error) bool {
	return hasCode(err, CodeAggregationFailed)
}

// IsInvalidConfig checks if an error is a configuration error.
func IsInvalidConfig(err error) bool {
	return hasCode(err, CodeInvalidConfig)
}

// IsQueryFailure checks if an error is a query execution error.
func IsQueryFailure(err error) bool {
	return hasCode(err, CodeQueryFailed)
}

func hasCode(err error, code string) bool {
	var benchErr *BenchError
	if errors.As(err, &benchErr) {
		return benchErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var benchErr *BenchError
	if errors.As(err, &benchErr) {
		return benchErr.Code
	}
	return CodeInternal
}
