// Package breakeven holds the formula engine: revenue, cost, profit,
// contribution margin, and break-even volume for a single unit price.
//
// Every function is pure; a Model may be shared between goroutines.
package breakeven

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveMargin is returned when the unit price does not exceed an
	// option's variable cost, so no finite positive break-even volume exists.
	ErrNonPositiveMargin = errors.New("contribution margin is not positive")

	// ErrInvalidRange is returned for sampling ranges and scales that cannot
	// produce meaningful output.
	ErrInvalidRange = errors.New("invalid range")
)

// Model carries the selling price shared by every option.
type Model struct {
	UnitPrice float64
}

// BreakEvenVolume is the outcome of a break-even calculation. Units is only
// meaningful when Defined is true.
type BreakEvenVolume struct {
	Units   float64 `json:"units"`
	Defined bool    `json:"defined"`
}

// ProfitResult is a single evaluation of an option at a volume.
type ProfitResult struct {
	Option             CostOption      `json:"option"`
	Volume             float64         `json:"volume"`
	Revenue            float64         `json:"revenue"`
	TotalCost          float64         `json:"totalCost"`
	Profit             float64         `json:"profit"`
	ContributionMargin float64         `json:"contributionMargin"`
	BreakEven          BreakEvenVolume `json:"breakEven"`
}

// NewModel returns a Model selling at unitPrice.
func NewModel(unitPrice float64) Model {
	return Model{UnitPrice: unitPrice}
}

// Revenue is the unit price times volume.
func (m Model) Revenue(volume float64) float64 {
	return m.UnitPrice * volume
}

// TotalCost is the option's fixed cost plus its variable cost times volume.
func (m Model) TotalCost(o CostOption, volume float64) float64 {
	return o.FixedCost + o.VariableCost*volume
}

// Profit is revenue less total cost.
func (m Model) Profit(o CostOption, volume float64) float64 {
	return m.Revenue(volume) - m.TotalCost(o, volume)
}

// ContributionMargin is what each unit sold contributes towards fixed cost.
// It may be zero or negative.
func (m Model) ContributionMargin(o CostOption) float64 {
	return m.UnitPrice - o.VariableCost
}

// BreakEven returns the volume at which profit is zero. When the
// contribution margin is not positive the returned volume is undefined and
// the error wraps ErrNonPositiveMargin.
func (m Model) BreakEven(o CostOption) (BreakEvenVolume, error) {
	margin := m.ContributionMargin(o)
	if margin <= 0 {
		return BreakEvenVolume{}, fmt.Errorf("break-even for %s at price %.2f and variable cost %.2f: %w",
			o.Name, m.UnitPrice, o.VariableCost, ErrNonPositiveMargin)
	}
	return BreakEvenVolume{Units: o.FixedCost / margin, Defined: true}, nil
}

// Evaluate computes every figure for the option at volume.
func (m Model) Evaluate(o CostOption, volume float64) ProfitResult {
	// An undefined break-even is carried in the result, not as an error.
	breakEven, _ := m.BreakEven(o)
	return ProfitResult{
		Option:             o,
		Volume:             volume,
		Revenue:            m.Revenue(volume),
		TotalCost:          m.TotalCost(o, volume),
		Profit:             m.Profit(o, volume),
		ContributionMargin: m.ContributionMargin(o),
		BreakEven:          breakEven,
	}
}

// EvaluateAll evaluates each option at volume, preserving order.
func (m Model) EvaluateAll(options []CostOption, volume float64) []ProfitResult {
	results := make([]ProfitResult, 0, len(options))
	for _, o := range options {
		results = append(results, m.Evaluate(o, volume))
	}
	return results
}
