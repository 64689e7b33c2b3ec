// Package apperror provides structured error handling for the grid toolkit.
// Configuration and structural errors must use AppError so integrating
// applications can branch on machine-readable codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by recovery semantics
const (
	// Developer/setup errors (fail fast, 500)
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeIllegalState  = "ILLEGAL_STATE"
	CodeUnknownColumn = "UNKNOWN_COLUMN"
	CodeQueryBuild    = "QUERY_BUILD_ERROR"

	// User input errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Authorization errors (401)
	CodeUnauthorized = "UNAUTHORIZED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
)

// AppError is the standard error type for the toolkit.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (grid name, column id, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewConfiguration creates a grid setup error (duplicate column, missing
// filter dependency, Configure called twice).
func NewConfiguration(message string) *AppError {
	return &AppError{
		Code:       CodeConfiguration,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewIllegalState creates an error for operations invoked out of lifecycle order.
func NewIllegalState(message string) *AppError {
	return &AppError{
		Code:       CodeIllegalState,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewUnknownColumn creates an error for a lookup of an unregistered column id.
func NewUnknownColumn(columnID string) *AppError {
	return &AppError{
		Code:       CodeUnknownColumn,
		Message:    fmt.Sprintf("column %q is not registered", columnID),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"column": columnID},
	}
}

// NewQueryBuild creates an error for a sort or filter expression the base
// query cannot accept.
func NewQueryBuild(message string) *AppError {
	return &AppError{
		Code:       CodeQueryBuild,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsConfiguration checks if error is CodeConfiguration
func IsConfiguration(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeConfiguration
	}
	return false
}

// IsUnknownColumn checks if error is CodeUnknownColumn
func IsUnknownColumn(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeUnknownColumn
	}
	return false
}
