// Package apperror defines the domain error taxonomy shared by the store,
// service and handler layers.
//
// Every error the service layer returns on purpose is an *AppError wrapping
// one of the sentinels below, so callers branch with errors.Is and read the
// human-readable message (and, for validation, the offending field) with
// errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: form field causing the error
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

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// The page handlers answer it with a redirect to a read-only view rather
// than an error page.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// FieldOf returns the form field a validation error refers to, or "" when
// err is not a validation error.
func FieldOf(err error) (field, message string, ok bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) || !errors.Is(appErr, ErrValidation) {
		return "", "", false
	}
	return appErr.Field, appErr.Message, true
}
