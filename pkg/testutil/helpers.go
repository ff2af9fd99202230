// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"

	"github.com/iwvelando/break-even/pkg/breakeven"
)

// FindResult finds an option's result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []breakeven.ProfitResult, name string) *breakeven.ProfitResult {
	for i := range results {
		if results[i].Option.Name == name {
			return &results[i]
		}
	}
	return nil
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}
