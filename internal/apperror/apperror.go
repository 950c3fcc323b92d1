// Package apperror defines the application's error taxonomy.
//
// Services and clients return *AppError values wrapping one of the sentinel
// errors below; the HTTP layer maps sentinels to status codes in exactly one
// place (handler/response.go). Upstream errors additionally carry the status
// code GitHub (or the LLM provider) returned, so proxy handlers can forward
// it instead of collapsing everything to 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrUpstream        = errors.New("upstream error")
	ErrConfig          = errors.New("configuration error")
)

type AppError struct {
	Err     error  // sentinel this error wraps
	Message string // human-readable message, safe for clients
	Field   string // optional: input field causing the error
	Status  int    // optional: upstream HTTP status to forward (ErrUpstream only)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated returns an AppError that HTTP handlers map to 401.
// The message is the client-facing string; the underlying verification
// failure is logged server-side, never placed here.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Upstream returns an AppError carrying the status code a provider returned.
// Handlers forward the status verbatim so callers can tell "no README" (404)
// from "rate limited" (403/429).
func Upstream(status int, message string) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: message,
		Status:  status,
	}
}

// Config reports a missing or unusable configuration value by key.
// Surfaced as 500; the key name makes the log line actionable.
func Config(key string) *AppError {
	return &AppError{
		Err:     ErrConfig,
		Message: fmt.Sprintf("%s is not configured", key),
	}
}
