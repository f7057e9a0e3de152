package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a typed outcome rendered to API consumers as {code, message}.
// Internal carries the infrastructure cause and is only ever logged.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is reports whether target carries the same code, so copies produced by
// WithInternal still match their sentinel.
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	var other *AppError
	if !errors.As(target, &other) || other == nil {
		return false
	}
	return other.Code != "" && other.Code == e.Code
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrConfig = &AppError{
		Code:       "CONFIG_ERROR",
		Message:    "Server is misconfigured",
		StatusCode: http.StatusInternalServerError,
	}

	ErrConsistencyFailure = &AppError{
		Code:       "CONSISTENCY_FAILURE",
		Message:    "The operation could not be applied consistently",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds an application error with the given code and HTTP status.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NotFound builds a 404 error for a specific resource kind.
func NotFound(code, message string) *AppError {
	return New(code, message, http.StatusNotFound)
}

// Conflict builds a 409 error for a state transition that is no longer valid.
func Conflict(code, message string) *AppError {
	return New(code, message, http.StatusConflict)
}

// Gone builds a 410 error for records that passed their expiry.
func Gone(code, message string) *AppError {
	return New(code, message, http.StatusGone)
}

// Forbidden keeps the shared FORBIDDEN code with a more specific message.
func Forbidden(message string) *AppError {
	return New(ErrForbidden.Code, message, http.StatusForbidden)
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// IsDomain reports whether err carries an AppError, i.e. a typed outcome the caller
// should surface instead of treating it as an infrastructure failure.
func IsDomain(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// NewBadRequest reports invalid input with a caller facing message.
func NewBadRequest(message string) *AppError {
	return New(ErrBadRequest.Code, message, ErrBadRequest.StatusCode)
}

// HasCode reports whether the first AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
