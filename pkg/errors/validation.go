package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxItemIDLength bounds item identifiers accepted from outside.
const MaxItemIDLength = 256

// ValidateItemID validates an item identifier.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidLayout, "item id cannot be empty")
	}

	if len(id) > MaxItemIDLength {
		return New(ErrCodeInvalidLayout, "item id too long (max %d characters)", MaxItemIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLayout, "item id %q contains invalid control characters", id)
		}
	}

	return nil
}

// ValidateCols validates a column count.
func ValidateCols(cols int) error {
	if cols < 1 {
		return New(ErrCodeInvalidConfig, "cols must be at least 1, got %d", cols)
	}
	return nil
}

// ValidateGeometry validates the pixel parameters of a grid.
// Margins and padding may be zero but not negative or non-finite.
func ValidateGeometry(cols int, rowHeight, containerWidth float64, margin, padding [2]float64, maxRows int) error {
	if err := ValidateCols(cols); err != nil {
		return err
	}
	if !finite(rowHeight) || rowHeight <= 0 {
		return New(ErrCodeInvalidConfig, "row height must be positive, got %v", rowHeight)
	}
	if !finite(containerWidth) || containerWidth <= 0 {
		return New(ErrCodeInvalidConfig, "container width must be positive, got %v", containerWidth)
	}
	for _, v := range [...]float64{margin[0], margin[1], padding[0], padding[1]} {
		if !finite(v) || v < 0 {
			return New(ErrCodeInvalidConfig, "margin and padding must be non-negative, got %v", v)
		}
	}
	if maxRows < 0 {
		return New(ErrCodeInvalidConfig, "max rows cannot be negative, got %d", maxRows)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
