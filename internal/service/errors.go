package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
	// ErrConflict is returned when a record with the same unique key already exists.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized is returned for bad credentials and invalid or expired tokens.
	// Callers only ever see the uniform message of the wrapping error.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInactiveAccount is returned when a deactivated account is used.
	ErrInactiveAccount = errors.New("account is inactive")
	// ErrInconsistentState is returned when a multi-step mutation stopped half way
	// and the remaining records must not be touched further.
	ErrInconsistentState = errors.New("inconsistent state")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// StoreError marks err as a failure of the external store.
// The result matches both ErrExternalService and err.
func StoreError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrExternalService, err)
}

// Error is a caller-facing failure. Kind is one of the sentinels above and
// Message is the exact text reported to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates an Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// PublicMessage returns the message that may be shown to an API caller.
func PublicMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Message
	}
	switch {
	case errors.Is(err, ErrExternalService):
		return "store unavailable: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "not found"
	default:
		return err.Error()
	}
}
