package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Room not found"},
			expected: "NOT_FOUND: Room not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeStorage,
				Message: "Failed to load room",
				Err:     errors.New("connection reset"),
			},
			expected: "STORAGE_ERROR: Failed to load room (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWithCause_ErrorsIs(t *testing.T) {
	sentinel := errors.New("room is already booked")
	err := Conflict("Room is not available").WithCause(sentinel)

	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to find the attached sentinel")
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("wrapped app error is found", func(t *testing.T) {
		inner := NotFoundWithID("Event", "42")
		wrapped := fmt.Errorf("transaction failed: %w", inner)

		got := AsAppError(wrapped)
		if got != inner {
			t.Errorf("expected the inner AppError to be returned")
		}
		if !IsAppError(wrapped) {
			t.Error("IsAppError should see through wrapping")
		}
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		got := AsAppError(errors.New("boom"))
		if got.Code != CodeInternal {
			t.Errorf("expected code %s, got %s", CodeInternal, got.Code)
		}
		if got.HTTPStatus != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", got.HTTPStatus)
		}
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Room"), CodeNotFound, http.StatusNotFound},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"invalid interval", InvalidInterval("end before start"), CodeInvalidInterval, http.StatusBadRequest},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"storage", Storage("db down", errors.New("x")), CodeStorage, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
			if !HasCode(tt.err, tt.code) {
				t.Errorf("HasCode(%s) should be true", tt.code)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Participant", "abc")

	if err.Message != "Participant not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["id"] != "abc" || err.Details["resource"] != "Participant" {
		t.Errorf("unexpected details %v", err.Details)
	}
}
