// Package mathutil provides the small numeric helpers shared by the formula
// engine and its callers.
package mathutil

import (
	"math"

	"github.com/iwvelando/break-even/pkg/constants"
)

// Percentage returns value as a percentage of scale. A zero scale yields 0.
func Percentage(value, scale float64) float64 {
	if scale == 0 {
		return 0
	}
	return value / scale * constants.PercentageMultiplier
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
