package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// MaxSpeed is the largest accepted speed value, in tenths of a second.
// Larger values would saturate the 16-bit delay field anyway.
const MaxSpeed = 6553.5

// ValidatePath validates a file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path names a directory: %q", path)
	}

	return nil
}

// ValidateRatio checks that a swap ratio lies in [0, 1].
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return New(ErrCodeInvalidInput, "swap ratio must be between 0 and 1, got %v", ratio)
	}
	return nil
}

// ValidateSpeed checks that a speed override is a finite, non-negative
// number no larger than MaxSpeed.
func ValidateSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return New(ErrCodeInvalidInput, "speed must be a finite number")
	}
	if speed < 0 || speed > MaxSpeed {
		return New(ErrCodeInvalidInput, "speed must be between 0 and %v, got %v", MaxSpeed, speed)
	}
	return nil
}

// ValidateDistance checks that a swap distance is not negative.
// Zero means unbounded.
func ValidateDistance(distance int) error {
	if distance < 0 {
		return New(ErrCodeInvalidInput, "swap distance cannot be negative, got %d", distance)
	}
	return nil
}

// ValidateLoop checks that a loop count fits the 16-bit NETSCAPE field.
func ValidateLoop(loop int64) error {
	if loop < 0 || loop > math.MaxUint16 {
		return New(ErrCodeInvalidInput, "loop count must be between 0 and %d, got %d", math.MaxUint16, loop)
	}
	return nil
}
