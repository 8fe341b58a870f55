package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeFileNotFound, cause, "open library")

	if err.Code != ErrCodeFileNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeFileNotFound)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "FILE_NOT_FOUND: open library: underlying error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeOutOfRange, "test"), ErrCodeOutOfRange, true},
		{"different code", New(ErrCodeOutOfRange, "test"), ErrCodeInternal, false},
		{"wrapped by fmt", fmt.Errorf("ctx: %w", New(ErrCodeNotFound, "x")), ErrCodeNotFound, true},
		{"plain error", errors.New("plain"), ErrCodeNotFound, false},
		{"nil error", nil, ErrCodeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeAndUserMessage(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeDeviceNotFound, "unknown device %q", "foo"))
	if got := GetCode(err); got != ErrCodeDeviceNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeDeviceNotFound)
	}
	if got := UserMessage(err); got != `unknown device "foo"` {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestClassifiers(t *testing.T) {
	if !IsNotFound(New(ErrCodeFileNotFound, "x")) {
		t.Error("IsNotFound(FILE_NOT_FOUND) = false")
	}
	if IsNotFound(New(ErrCodeOutOfRange, "x")) {
		t.Error("IsNotFound(OUT_OF_RANGE) = true")
	}
	if !IsInvalid(New(ErrCodeOutOfRange, "x")) {
		t.Error("IsInvalid(OUT_OF_RANGE) = false")
	}
	if IsInvalid(New(ErrCodeInternal, "x")) {
		t.Error("IsInvalid(INTERNAL_ERROR) = true")
	}
}
