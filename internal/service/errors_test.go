package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and message",
			err: &ValidationError{
				Field:   "message",
				Message: "cannot be empty",
			},
			want: "validation error on field message: cannot be empty",
		},
		{
			name: "empty field",
			err: &ValidationError{
				Field:   "",
				Message: "invalid",
			},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     string
		wantNil bool
		wantMsg string
	}{
		{
			name:    "nil error",
			err:     nil,
			msg:     "context",
			wantNil: true,
		},
		{
			name:    "wrapped error",
			err:     errors.New("original error"),
			msg:     "context",
			wantNil: false,
			wantMsg: "context: original error",
		},
		{
			name:    "empty message",
			err:     errors.New("original error"),
			msg:     "",
			wantNil: false,
			wantMsg: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.msg)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Errorf("WrapError() = nil, want error")
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapError() = %v, want %v", got.Error(), tt.wantMsg)
			}
			// Verify error wrapping
			if !errors.Is(got, tt.err) {
				t.Errorf("WrapError() should wrap original error")
			}
		})
	}
}

func TestErrorConstants(t *testing.T) {
	if ErrInvalidInput == nil {
		t.Error("ErrInvalidInput should not be nil")
	}
	if ErrNotFound == nil {
		t.Error("ErrNotFound should not be nil")
	}
	if ErrExternalService == nil {
		t.Error("ErrExternalService should not be nil")
	}

	// Test error matching
	if !errors.Is(ErrInvalidInput, ErrInvalidInput) {
		t.Error("ErrInvalidInput should match itself")
	}
	if !errors.Is(ErrNotFound, ErrNotFound) {
		t.Error("ErrNotFound should match itself")
	}
	if !errors.Is(ErrExternalService, ErrExternalService) {
		t.Error("ErrExternalService should match itself")
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	err := WrapError(NewValidationError("username", "too short"), "register")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "username" {
		t.Errorf("errors.As() did not find ValidationError in %v", err)
	}
}

func TestError_Kind(t *testing.T) {
	taken := NewError(ErrConflict, "username already in use")
	wrapped := fmt.Errorf("register: %w", taken)

	if !errors.Is(wrapped, ErrConflict) {
		t.Error("Error should match its kind")
	}
	if !errors.Is(wrapped, taken) {
		t.Error("Error should match itself through wrapping")
	}
	if taken.Error() != "username already in use" {
		t.Errorf("Error() = %q", taken.Error())
	}
}

func TestStoreError(t *testing.T) {
	if StoreError(nil, "ctx") != nil {
		t.Error("StoreError(nil) should be nil")
	}

	cause := errors.New("connection refused")
	err := StoreError(cause, "create book")
	if !errors.Is(err, ErrExternalService) {
		t.Error("StoreError should match ErrExternalService")
	}
	if !errors.Is(err, cause) {
		t.Error("StoreError should match the cause")
	}
	if err.Error() != "create book: external service error: connection refused" {
		t.Errorf("StoreError() = %q", err.Error())
	}
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation error reports message verbatim",
			err:  WrapError(NewValidationError("email", "email must contain @"), "register"),
			want: "email must contain @",
		},
		{
			name: "service error reports its message",
			err:  fmt.Errorf("login: %w", NewError(ErrUnauthorized, "invalid credentials")),
			want: "invalid credentials",
		},
		{
			name: "store error keeps the underlying message",
			err:  StoreError(errors.New("timeout"), "get user"),
			want: "store unavailable: get user: external service error: timeout",
		},
		{
			name: "not found",
			err:  WrapError(ErrNotFound, "book b-1"),
			want: "not found",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicMessage(tt.err); got != tt.want {
				t.Errorf("PublicMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
