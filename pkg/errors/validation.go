package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// deviceNameRegex matches bundled and user-supplied device names such as
// "ibm_guadalupe_16" or "rigetti-aspen-8".
var deviceNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// ValidateDeviceName validates a device name for safety and correctness.
// Device names end up in cache keys, URLs and file names, so the rules are
// conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - Lowercase letters, digits, '_', '-' and '.' only
//   - No path traversal sequences
func ValidateDeviceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDevice, "device name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidDevice, "device name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidDevice, "device name contains invalid characters: %q", "..")
	}
	if !deviceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidDevice, "invalid device name: %q", name)
	}
	return nil
}

// ValidatePath validates a user supplied file path (device or library file).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateQubits checks that k lies in (0, n].
func ValidateQubits(k, n int) error {
	if k <= 0 || k > n {
		return New(ErrCodeOutOfRange, "qubit count %d not in (0, %d]", k, n)
	}
	return nil
}
