package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeRead           ErrorType = "READ"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeSchemaMismatch ErrorType = "SCHEMA_MISMATCH"
	ErrTypeMissingColumn  ErrorType = "MISSING_COLUMN"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeStorage        ErrorType = "STORAGE"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// UserMessage returns the operator-facing message without the type prefix.
func (e *AppError) UserMessage() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewReadError reports input that could not be decoded as any supported
// tabular format.
func NewReadError(source string, cause error) *AppError {
	return NewAppError(ErrTypeRead, fmt.Sprintf("could not read %s as a workbook or delimited text", source), cause).
		WithContext("source", source)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewSchemaMismatchError reports a source whose counter columns disagree
// with the rest of a combined run.
func NewSchemaMismatchError(source string, missing, unexpected []string) *AppError {
	missing = sortedCopy(missing)
	unexpected = sortedCopy(unexpected)

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(unexpected, ", "))
	}
	msg := fmt.Sprintf("counter columns of source %q do not match the other sources", source)
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return NewAppError(ErrTypeSchemaMismatch, msg, nil).
		WithContext("source", source).
		WithContext("missing", missing).
		WithContext("unexpected", unexpected)
}

// NewMissingColumnError reports a required column that is absent.
func NewMissingColumnError(column, source string) *AppError {
	msg := fmt.Sprintf("required column %q is missing", column)
	if source != "" {
		msg = fmt.Sprintf("required column %q is missing from %s", column, source)
	}
	return NewAppError(ErrTypeMissingColumn, msg, nil).
		WithContext("column", column).
		WithContext("source", source)
}

// NewSiteColumnMissingError reports a site pivot that has no rows for one
// of the site columns.
func NewSiteColumnMissingError(site string) *AppError {
	return NewAppError(ErrTypeMissingColumn, fmt.Sprintf("site column missing: no %s rows matched after filtering", site), nil).
		WithContext("column", site)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
