package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypePolicy     ErrorType = "policy"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
)

// GenericMessage is the only text callers see for storage or transport failures.
const GenericMessage = "Something went wrong. Please try again."

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewPolicyError creates an error for requests that are well formed but refused
// (moderation block, duplicate vote, expired decision).
func NewPolicyError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypePolicy,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error. The message shown to
// callers is always GenericMessage; the cause stays in Internal.
func NewInternalError(internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    GenericMessage,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// WithStatus returns a copy of the error carrying a different HTTP status.
func (e *AppError) WithStatus(status int) *AppError {
	cp := *e
	cp.StatusCode = status
	return &cp
}

// As extracts an *AppError from err. Errors that are not AppErrors become
// internal errors so their text never reaches a response body.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// ErrorResponse represents the JSON error envelope
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
