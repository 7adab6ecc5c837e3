package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewErrorDefaults(t *testing.T) {
	err := NewError(ErrUserNotFound)
	if err.Code != ErrUserNotFound {
		t.Fatalf("code = %d, want %d", err.Code, ErrUserNotFound)
	}
	if err.Status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", err.Status, http.StatusNotFound)
	}

	err = NewError(ErrUserAlreadyExists)
	if err.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want default %d", err.Status, http.StatusBadRequest)
	}
}

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrMessageContentTooLong, 140)
	if !strings.Contains(err.Message, "140") {
		t.Errorf("message %q does not mention the limit", err.Message)
	}
}

func TestNewErrorUnknownCode(t *testing.T) {
	err := NewError(424242)
	if err.Code != ErrUnknown {
		t.Errorf("code = %d, want %d", err.Code, ErrUnknown)
	}
}

func TestClassification(t *testing.T) {
	cause := errors.New("disk on fire")

	tests := []struct {
		name       string
		err        error
		validation bool
		storage    bool
	}{
		{"validation", NewError(ErrInvalidCredentials), true, false},
		{"storage", Wrap(ErrStorage, cause), false, true},
		{"wrapped validation", fmt.Errorf("post: %w", NewError(ErrMessageEmpty)), true, false},
		{"plain error", cause, false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation = %v, want %v", got, tt.validation)
			}
			if got := IsStorage(tt.err); got != tt.storage {
				t.Errorf("IsStorage = %v, want %v", got, tt.storage)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrStorage, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach the cause")
	}
	if !HasCode(err, ErrStorage) {
		t.Error("HasCode(ErrStorage) = false")
	}
	if From(cause).Code != ErrUnknown {
		t.Error("From(plain) should map to ErrUnknown")
	}
	if From(err) != err {
		t.Error("From should return the CustomError itself")
	}
}
