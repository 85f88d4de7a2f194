package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("userId required in query", nil), http.StatusBadRequest},
		{"bad request", NewBadRequestError("invalid request body", nil), http.StatusBadRequest},
		{"authentication", NewAuthError("Invalid or expired token", nil), http.StatusUnauthorized},
		{"authorization", NewForbiddenError("Insufficient permissions", nil), http.StatusForbidden},
		{"not found", NewNotFoundError("User not found", nil), http.StatusNotFound},
		{"conflict", NewConflictError("Email already used", nil), http.StatusConflict},
		{"unavailable", NewUnavailableError("database unreachable", nil), http.StatusServiceUnavailable},
		{"database", NewDatabaseError("query failed", nil), http.StatusInternalServerError},
		{"unknown", NewAppError(UnknownError, "???", nil), http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.StatusCode(); got != test.want {
				t.Errorf("StatusCode() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to query clock events", cause)

	if got, want := err.Error(), "failed to query clock events: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestAppError_ToResponseHidesCause(t *testing.T) {
	err := NewNotFoundError("User not found", errors.New("no rows in result set"))
	resp := err.ToResponse()

	if resp.Error.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", resp.Error.Status)
	}
	if resp.Error.Message != "User not found" {
		t.Errorf("Message = %q, want %q", resp.Error.Message, "User not found")
	}
}

func TestFromError(t *testing.T) {
	forbidden := NewForbiddenError("Insufficient permissions", nil)
	wrapped := fmt.Errorf("toggle: %w", forbidden)

	if got := FromError(wrapped); got != forbidden {
		t.Errorf("FromError() should unwrap to the original AppError, got %v", got)
	}

	plain := errors.New("boom")
	got := FromError(plain)
	if got.Type != InternalError {
		t.Errorf("FromError(plain).Type = %v, want InternalError", got.Type)
	}
	if !errors.Is(got, plain) {
		t.Error("FromError(plain) should wrap the original error")
	}
}

func TestIsHelpers(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewConflictError("username already exists", nil))

	if !IsConflictError(err) {
		t.Error("IsConflictError() = false, want true")
	}
	if IsNotFound(err) || IsForbidden(err) || IsValidationError(err) {
		t.Error("only the conflict predicate should match")
	}
}
