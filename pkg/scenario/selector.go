// Package scenario ranks cost options by profit, builds the best-option
// table for named demand levels, and composes the insight narrative for a
// production volume.
//
// Ties are broken by configured order: when two options earn exactly the same
// profit the one listed first wins.
package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iwvelando/break-even/pkg/breakeven"
	"github.com/iwvelando/break-even/pkg/constants"
)

var (
	// ErrEmptyOptionSet is returned when ranking is requested with no options.
	ErrEmptyOptionSet = errors.New("no cost options configured")

	// ErrDuplicateOption is returned when two options share a name or key.
	ErrDuplicateOption = errors.New("duplicate cost option")

	// ErrDuplicateScenario is returned when two demand levels share a name.
	ErrDuplicateScenario = errors.New("duplicate demand scenario")
)

// Thresholds select the strategy clause appended to an insight.
type Thresholds struct {
	HighVolume float64 `json:"highVolume" yaml:"highVolume"`
	LowVolume  float64 `json:"lowVolume" yaml:"lowVolume"`
}

// DefaultThresholds returns the 600,000 / 400,000 unit thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighVolume: constants.DefaultHighVolume,
		LowVolume:  constants.DefaultLowVolume,
	}
}

// Selector ranks a fixed, ordered set of options under one model.
type Selector struct {
	model      breakeven.Model
	options    []breakeven.CostOption
	thresholds Thresholds
}

// NewSelector validates the option set and returns a Selector over a copy of it.
func NewSelector(model breakeven.Model, options []breakeven.CostOption, thresholds Thresholds) (*Selector, error) {
	if err := checkOptions(options); err != nil {
		return nil, err
	}
	owned := make([]breakeven.CostOption, len(options))
	copy(owned, options)
	return &Selector{model: model, options: owned, thresholds: thresholds}, nil
}

func checkOptions(options []breakeven.CostOption) error {
	if len(options) == 0 {
		return ErrEmptyOptionSet
	}
	names := make(map[string]struct{}, len(options))
	keys := make(map[string]struct{}, len(options))
	for _, o := range options {
		if _, seen := names[o.Name]; seen {
			return fmt.Errorf("%w: name %q", ErrDuplicateOption, o.Name)
		}
		if _, seen := keys[o.ID()]; seen {
			return fmt.Errorf("%w: key %q", ErrDuplicateOption, o.ID())
		}
		names[o.Name] = struct{}{}
		keys[o.ID()] = struct{}{}
	}
	return nil
}

// Model returns the selector's model.
func (s *Selector) Model() breakeven.Model {
	return s.model
}

// Options returns the options in configured order.
func (s *Selector) Options() []breakeven.CostOption {
	options := make([]breakeven.CostOption, len(s.options))
	copy(options, s.options)
	return options
}

// Thresholds returns the strategy thresholds.
func (s *Selector) Thresholds() Thresholds {
	return s.thresholds
}

// Rank evaluates every option at volume and orders the results by profit,
// highest first. Equal profits keep configured order.
func (s *Selector) Rank(volume float64) []breakeven.ProfitResult {
	ranked := s.model.EvaluateAll(s.options, volume)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Profit > ranked[j].Profit
	})
	return ranked
}

// Best returns the option with the strictly highest profit at volume.
func (s *Selector) Best(volume float64) breakeven.ProfitResult {
	return bestOf(s.model.EvaluateAll(s.options, volume))
}

func bestOf(results []breakeven.ProfitResult) breakeven.ProfitResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.Profit > best.Profit {
			best = r
		}
	}
	return best
}

// MinBreakEven returns the smallest defined break-even volume and the option
// it belongs to. Options with a non-positive margin are skipped; ok is false
// when none remain.
func (s *Selector) MinBreakEven() (volume breakeven.BreakEvenVolume, option breakeven.CostOption, ok bool) {
	for _, o := range s.options {
		be, err := s.model.BreakEven(o)
		if err != nil {
			continue
		}
		if !ok || be.Units < volume.Units {
			volume, option, ok = be, o, true
		}
	}
	return volume, option, ok
}

// LowestVariableCost returns the first option with the minimum variable cost.
func (s *Selector) LowestVariableCost() breakeven.CostOption {
	lowest := s.options[0]
	for _, o := range s.options[1:] {
		if o.VariableCost < lowest.VariableCost {
			lowest = o
		}
	}
	return lowest
}

// LowestFixedCost returns the first option with the minimum fixed cost.
func (s *Selector) LowestFixedCost() breakeven.CostOption {
	lowest := s.options[0]
	for _, o := range s.options[1:] {
		if o.FixedCost < lowest.FixedCost {
			lowest = o
		}
	}
	return lowest
}
