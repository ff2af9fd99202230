package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVolume is returned for production volumes a user cannot select.
var ErrInvalidVolume = errors.New("invalid volume")

// ValidateVolume rejects negative volumes and volumes above maxVolume.
func ValidateVolume(volume, maxVolume int) error {
	if volume < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidVolume, volume)
	}
	if volume > maxVolume {
		return fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidVolume, volume, maxVolume)
	}
	return nil
}

// ParseVolume parses a whole number of units, tolerating thousands
// separators ("500,000"), and validates it against maxVolume.
func ParseVolume(value string, maxVolume int) (int, error) {
	trimmed := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidVolume)
	}
	volume, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidVolume, value)
	}
	if err := ValidateVolume(volume, maxVolume); err != nil {
		return 0, err
	}
	return volume, nil
}
