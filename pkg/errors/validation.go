package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxCapacity is the largest slot pool the allocator supports.
const MaxCapacity = 64

// maxAttendeeIDLength bounds attendee identifiers accepted from outer surfaces.
const maxAttendeeIDLength = 256

// ValidateSurface validates a rendering surface size.
// Zero is accepted (it produces a degenerate layout); negative, NaN and
// infinite values are rejected.
func ValidateSurface(width, height float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) || width < 0 {
		return New(ErrCodeInvalidSurface, "surface width must be a finite non-negative number, got %v", width)
	}
	if math.IsNaN(height) || math.IsInf(height, 0) || height < 0 {
		return New(ErrCodeInvalidSurface, "surface height must be a finite non-negative number, got %v", height)
	}
	return nil
}

// ValidateCapacity validates a slot pool capacity.
func ValidateCapacity(n int) error {
	if n < 1 || n > MaxCapacity {
		return New(ErrCodeInvalidCapacity, "capacity must be between 1 and %d, got %d", MaxCapacity, n)
	}
	return nil
}

// ValidateSlot validates that idx addresses a slot in a pool of the given capacity.
func ValidateSlot(idx, capacity int) error {
	if idx < 0 || idx >= capacity {
		return New(ErrCodeInvalidSlot, "slot %d out of range [0, %d)", idx, capacity)
	}
	return nil
}

// ValidateAttendeeID validates an attendee identifier.
//
// Validation rules:
//   - ID cannot be empty or whitespace only
//   - Maximum length of 256 characters
//   - No control characters
func ValidateAttendeeID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidAttendee, "attendee id cannot be empty")
	}

	if len(id) > maxAttendeeIDLength {
		return New(ErrCodeInvalidAttendee, "attendee id too long (max %d characters)", maxAttendeeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAttendee, "attendee id contains invalid control characters")
		}
	}

	return nil
}
