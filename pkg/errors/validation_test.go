package errors

import (
	"strings"
	"testing"
)

func TestValidateDeviceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bundled", "ibm_guadalupe_16", false},
		{"dashes and dots", "rigetti-aspen.8", false},
		{"empty", "", true},
		{"uppercase", "IBM", true},
		{"traversal", "a..b", true},
		{"slash", "a/b", true},
		{"too long", strings.Repeat("a", 129), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeviceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDeviceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDevice) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidDevice)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("libs/guadalupe.json"); err != nil {
		t.Errorf("ValidatePath(valid) = %v", err)
	}
	if err := ValidatePath(""); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("ValidatePath(empty) = %v", err)
	}
	if err := ValidatePath("a\x00b"); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("ValidatePath(nul) = %v", err)
	}
	if err := ValidatePath(strings.Repeat("x", 501)); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("ValidatePath(long) = %v", err)
	}
}

func TestValidateQubits(t *testing.T) {
	tests := []struct {
		k, n    int
		wantErr bool
	}{
		{1, 1, false},
		{5, 16, false},
		{16, 16, false},
		{0, 16, true},
		{-1, 16, true},
		{17, 16, true},
	}
	for _, tt := range tests {
		err := ValidateQubits(tt.k, tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateQubits(%d, %d) = %v, wantErr %v", tt.k, tt.n, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeOutOfRange) {
			t.Errorf("ValidateQubits(%d, %d) code = %v", tt.k, tt.n, GetCode(err))
		}
	}
}
