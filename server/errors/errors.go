package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an application error carrying the HTTP status to answer with
// and a user-facing message separate from the internal cause.
type AppError struct {
	Code    int    `json:"status_code"`
	Message string `json:"message"`
	Err     error  `json:"-"` // internal cause, logged but never serialized
	Context string `json:"-"` // extra context (function, parameters)
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status to respond with.
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage returns the message safe to show the client.
func (e *AppError) UserMessage() string {
	return e.Message
}

// WithContext attaches call-site context to the error.
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a 400 Bad Request error.
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewTooLargeError creates a 413 Request Entity Too Large error, used when
// an uploaded file exceeds the configured size limit.
func NewTooLargeError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusRequestEntityTooLarge,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedMediaError creates a 415 Unsupported Media Type error for
// uploads that are neither CSV nor Excel.
func NewUnsupportedMediaError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusUnsupportedMediaType,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a 500 Internal Server Error. The client gets a
// generic message; the details stay in the logs.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
		Err:     errors.Join(errors.New(message), err),
	}
}

// WrapError wraps an existing error with context. An AppError keeps its
// status code; anything else becomes an internal error.
func WrapError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
			Context: appErr.Context,
		}
	}

	return NewInternalError(message, err)
}
