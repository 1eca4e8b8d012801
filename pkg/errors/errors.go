// Package errors provides the categorized error type used across the
// analytics service: each error carries a category, a stable code, an
// optional suggestion for the operator, free-form context, and the stack
// trace of its origin.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryAggregation   ErrorCategory = "aggregation"
	CategoryStorage       ErrorCategory = "storage"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"
	CodeEncodingError ErrorCode = "encoding_error"

	// Validation errors
	CodeInvalidAmount   ErrorCode = "invalid_amount"
	CodeInvalidDate     ErrorCode = "invalid_date"
	CodeInvalidCurrency ErrorCode = "invalid_currency"
	CodeMissingField    ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Aggregation errors
	CodeAggregationFailed ErrorCode = "aggregation_failed"

	// Storage errors
	CodeSnapshotCorrupted     ErrorCode = "snapshot_corrupted"
	CodeUnsupportedVersion    ErrorCode = "unsupported_version"
	CodeSnapshotWriteConflict ErrorCode = "snapshot_write_conflict"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// AnalyticsError is the base error type for all application errors
type AnalyticsError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *AnalyticsError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *AnalyticsError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate process exit code for the error
func (e *AnalyticsError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryAggregation, CategoryInternal:
		return 5
	case CategoryStorage:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *AnalyticsError) WithContext(key string, value interface{}) *AnalyticsError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *AnalyticsError) WithSuggestion(suggestion string) *AnalyticsError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AnalyticsError
func New(category ErrorCategory, code ErrorCode, message string) *AnalyticsError {
	return &AnalyticsError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with AnalyticsError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *AnalyticsError {
	if err == nil {
		return nil
	}

	return &AnalyticsError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *AnalyticsError {
	var message, suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and try using a backup copy"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *AnalyticsError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, file string, line int, column string, value string, err error) *AnalyticsError {
	var message, suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d, column %q: %q", file, line, column, value)
		suggestion = "check the data format and ensure it matches the expected structure"
	case CodeMissingColumn:
		message = fmt.Sprintf("missing required column %q in file %s", column, file)
		suggestion = "verify the ledger has all required columns with correct headers"
	case CodeInvalidData:
		message = fmt.Sprintf("invalid data in file %s at line %d, column %q: %q", file, line, column, value)
		suggestion = "correct the data format or remove the invalid entry"
	case CodeEncodingError:
		message = fmt.Sprintf("encoding error in file %s at line %d", file, line)
		suggestion = "ensure the file is saved in UTF-8 encoding"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	var result *AnalyticsError
	if err != nil {
		result = Wrap(err, CategoryParse, code, message)
	} else {
		result = New(CategoryParse, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *AnalyticsError {
	var message, suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field %q: %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field %q: %v", field, value)
		suggestion = "use date format YYYY-MM-DD"
	case CodeInvalidCurrency:
		message = fmt.Sprintf("unknown currency in field %q: %v", field, value)
		suggestion = "use one of the configured currency codes"
	case CodeMissingField:
		message = fmt.Sprintf("required field %q is missing or empty", field)
		suggestion = "provide a value for this required field"
	default:
		message = fmt.Sprintf("validation error in field %q: %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *AnalyticsError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, err error) *AnalyticsError {
	var message, suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for %q", setting)
		suggestion = "review the configuration value and its documented range"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration %q", setting)
		suggestion = "set the configuration via flag, environment or config file"
	default:
		message = fmt.Sprintf("configuration error for %q", setting)
		suggestion = "check the configuration"
	}

	var result *AnalyticsError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting)
}

// StorageError creates a snapshot-store-related error
func StorageError(code ErrorCode, path string, err error) *AnalyticsError {
	var message, suggestion string

	switch code {
	case CodeSnapshotCorrupted:
		message = fmt.Sprintf("snapshot is not valid JSON: %s", path)
		suggestion = "restore the snapshot from a backup copy"
	case CodeUnsupportedVersion:
		message = fmt.Sprintf("snapshot version is not supported: %s", path)
		suggestion = "upgrade the tool or re-export the snapshot"
	case CodeSnapshotWriteConflict:
		message = fmt.Sprintf("failed to replace snapshot atomically: %s", path)
		suggestion = "ensure no other process is writing the snapshot"
	default:
		message = fmt.Sprintf("storage error: %s", path)
		suggestion = "check the snapshot file and try again"
	}

	var result *AnalyticsError
	if err != nil {
		result = Wrap(err, CategoryStorage, code, message)
	} else {
		result = New(CategoryStorage, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("path", path)
}

// AsAnalyticsError extracts an AnalyticsError from an error chain.
func AsAnalyticsError(err error) (*AnalyticsError, bool) {
	var ae *AnalyticsError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsCategory reports whether err is an AnalyticsError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var ae *AnalyticsError
	if errors.As(err, &ae) {
		return ae.Category == category
	}
	return false
}

// GetExitCode extracts the exit code from an error chain, defaulting to 1.
func GetExitCode(err error) int {
	var ae *AnalyticsError
	if errors.As(err, &ae) {
		return ae.GetExitCode()
	}
	return 1
}
