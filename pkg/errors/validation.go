package errors

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from graph documents.
const MaxNodeIDLength = 256

// ValidateNodeID validates a node identifier taken from a graph document.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of [MaxNodeIDLength] bytes
//
// Any other string, including numeric ids rendered as text, is accepted.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateFinite reports an INVALID_CONFIG error when v is NaN or infinite.
// name identifies the offending field in the message.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidateViewport validates viewport dimensions in screen pixels.
func ValidateViewport(width, height float64) error {
	if err := ValidateFinite("width", width); err != nil {
		return err
	}
	if err := ValidateFinite("height", height); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "viewport must be positive, got %gx%g", width, height)
	}
	return nil
}

// ValidateFormats checks that every requested output format is supported.
// Formats are compared case-insensitively and surrounding whitespace is ignored.
// The normalized list is returned with duplicates removed, in request order.
func ValidateFormats(formats []string, supported []string) ([]string, error) {
	if len(formats) == 0 {
		return nil, New(ErrCodeInvalidFormat, "at least one output format is required")
	}

	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !slices.Contains(supported, f) {
			return nil, New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", f, strings.Join(supported, ", "))
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	return out, nil
}
