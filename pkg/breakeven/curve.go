package breakeven

import (
	"fmt"

	"github.com/iwvelando/break-even/pkg/constants"
	"github.com/iwvelando/break-even/pkg/mathutil"
)

// CurvePoint is one sample of the revenue and cost lines.
type CurvePoint struct {
	Volume  float64   `json:"volume"`
	Revenue float64   `json:"revenue"`
	Costs   []float64 `json:"costs"` // indexed like the options passed to Curve
}

// CurvePointCount returns how many samples Curve takes for the range. It
// fails with ErrInvalidRange unless the count is at most
// constants.MaxCurvePoints.
func CurvePointCount(maxVolume, step float64) (int, error) {
	if !mathutil.IsFinite(step) || step <= 0 {
		return 0, fmt.Errorf("curve step %.2f must be positive: %w", step, ErrInvalidRange)
	}
	if !mathutil.IsFinite(maxVolume) || maxVolume < 0 {
		return 0, fmt.Errorf("curve maximum %.2f cannot be negative: %w", maxVolume, ErrInvalidRange)
	}

	intervals := maxVolume / step
	if !mathutil.IsFinite(intervals) || intervals >= constants.MaxCurvePoints {
		return 0, fmt.Errorf("curve maximum %.0f at step %.0f exceeds %d points: %w",
			maxVolume, step, constants.MaxCurvePoints, ErrInvalidRange)
	}
	return int(intervals) + 1, nil
}

// Curve samples revenue and each option's total cost at 0, step, 2*step, ...
// up to and including maxVolume.
func (m Model) Curve(options []CostOption, maxVolume, step float64) ([]CurvePoint, error) {
	count, err := CurvePointCount(maxVolume, step)
	if err != nil {
		return nil, err
	}

	points := make([]CurvePoint, 0, count)
	for i := 0; i < count; i++ {
		volume := float64(i) * step
		costs := make([]float64, len(options))
		for j, o := range options {
			costs[j] = m.TotalCost(o, volume)
		}
		points = append(points, CurvePoint{
			Volume:  volume,
			Revenue: m.Revenue(volume),
			Costs:   costs,
		})
	}
	return points, nil
}

// BarWidth expresses the option's break-even volume as a percentage of
// scale. Values above 100 are returned as is.
func (m Model) BarWidth(o CostOption, scale float64) (float64, error) {
	if scale <= 0 {
		return 0, fmt.Errorf("bar scale %.2f must be positive: %w", scale, ErrInvalidRange)
	}
	breakEven, err := m.BreakEven(o)
	if err != nil {
		return 0, err
	}
	return mathutil.Percentage(breakEven.Units, scale), nil
}
