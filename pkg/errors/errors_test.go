package errors

import (
	"errors"
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

func TestWrap(t *testing.T) {
	originalErr := errors.New("storage unavailable")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "tour not found",
			},
			expected: "NOT_FOUND: tour not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("storage unavailable"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: storage unavailable)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"capacity exceeded", CapacityExceeded("tour is full"), CodeCapacityExceeded, http.StatusConflict},
		{"invalid transition", InvalidTransition("cancelled", "paid"), CodeInvalidTransition, http.StatusConflict},
		{"tour unavailable", TourUnavailable("tour already started"), CodeTourUnavailable, http.StatusConflict},
		{"concurrency conflict", ConcurrencyConflict("Tour"), CodeConcurrencyConflict, http.StatusConflict},
		{"timeout", Timeout("could not commit capacity"), CodeTimeout, http.StatusGatewayTimeout},
		{"not found", NotFoundWithID("Room", "abc"), CodeNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestInvalidTransition_Details(t *testing.T) {
	err := InvalidTransition("completed", "confirmed")

	if err.Details["from"] != "completed" || err.Details["to"] != "confirmed" {
		t.Errorf("expected from/to details, got %v", err.Details)
	}
}

func TestIsCode(t *testing.T) {
	err := CapacityExceeded("full")

	if !IsCode(err, CodeCapacityExceeded) {
		t.Errorf("IsCode should match CAPACITY_EXCEEDED")
	}
	if IsCode(err, CodeConflict) {
		t.Errorf("IsCode should not match CONFLICT")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Errorf("IsCode should be false for non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)

	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}

	original := Conflict("room overlap")
	if AsAppError(original) != original {
		t.Errorf("AsAppError should return the same AppError instance")
	}
}
