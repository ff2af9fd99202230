package scenario

import (
	"fmt"
	"strings"

	"github.com/iwvelando/break-even/pkg/breakeven"
	"github.com/iwvelando/break-even/pkg/format"
)

// Kind identifies which headline an insight carries.
type Kind string

const (
	// KindAllLoss is used when the volume is below every defined break-even.
	KindAllLoss Kind = "all-loss"
	// KindMixed is used when the leader is profitable and the laggard is not.
	KindMixed Kind = "mixed"
	// KindLeader covers every other case.
	KindLeader Kind = "leader"
)

// StrategyKind identifies the volume-dependent advice appended to an insight.
type StrategyKind string

const (
	// StrategyHighVolume favours the lowest variable cost option above the high threshold
	StrategyHighVolume StrategyKind = "high-volume"

	// StrategyLowVolume favours the lowest fixed cost option below the low threshold
	StrategyLowVolume StrategyKind = "low-volume"
)

// Strategy names the option favoured at very high or very low volume.
type Strategy struct {
	Kind   StrategyKind         `json:"kind"`
	Option breakeven.CostOption `json:"option"`
}

// Narrative holds the facts behind an insight. Text renders them.
type Narrative struct {
	Volume       float64                   `json:"volume"`
	Kind         Kind                      `json:"kind"`
	Best         breakeven.ProfitResult    `json:"best"`
	Worst        breakeven.ProfitResult    `json:"worst"`
	MinBreakEven breakeven.BreakEvenVolume `json:"minBreakEven"`
	Strategy     *Strategy                 `json:"strategy,omitempty"`
}

// Gap is the profit difference between the best and worst option.
func (n Narrative) Gap() float64 {
	return n.Best.Profit - n.Worst.Profit
}

// Insight composes the narrative for volume.
func (s *Selector) Insight(volume float64) Narrative {
	ranked := s.Rank(volume)
	n := Narrative{
		Volume: volume,
		Best:   ranked[0],
		Worst:  ranked[len(ranked)-1],
	}

	minBreakEven, _, hasBreakEven := s.MinBreakEven()
	n.MinBreakEven = minBreakEven

	switch {
	case hasBreakEven && volume < minBreakEven.Units:
		n.Kind = KindAllLoss
	case n.Best.Profit > 0 && n.Worst.Profit < 0:
		n.Kind = KindMixed
	default:
		n.Kind = KindLeader
	}

	switch {
	case volume > s.thresholds.HighVolume:
		n.Strategy = &Strategy{Kind: StrategyHighVolume, Option: s.LowestVariableCost()}
	case volume < s.thresholds.LowVolume:
		n.Strategy = &Strategy{Kind: StrategyLowVolume, Option: s.LowestFixedCost()}
	}

	return n
}

// Text renders the narrative as a sentence or two of plain text.
func (n Narrative) Text() string {
	var builder strings.Builder
	volume := format.Units(n.Volume)

	switch n.Kind {
	case KindAllLoss:
		fmt.Fprintf(&builder, "At %s units, all options operate at a loss. You need to reach at least %s units to break even with the most conservative option.",
			volume, format.Units(n.MinBreakEven.Units))
	case KindMixed:
		fmt.Fprintf(&builder, "At %s units, %s is the most profitable option (%s), while %s is still operating at a loss (%s).",
			volume, n.Best.Option.Name, format.Compact(n.Best.Profit), n.Worst.Option.Name, format.Compact(n.Worst.Profit))
	default:
		fmt.Fprintf(&builder, "At %s units, %s generates the highest profit (%s). The difference from the least profitable option is %s.",
			volume, n.Best.Option.Name, format.Compact(n.Best.Profit), format.Compact(n.Gap()))
	}

	if n.Strategy != nil {
		switch n.Strategy.Kind {
		case StrategyHighVolume:
			fmt.Fprintf(&builder, " At high volumes, %s's lower variable cost (%s) delivers the best margins.",
				n.Strategy.Option.Name, format.Currency(n.Strategy.Option.VariableCost))
		case StrategyLowVolume:
			fmt.Fprintf(&builder, " At lower volumes, %s's lower fixed costs minimize risk.", n.Strategy.Option.Name)
		}
	}

	return builder.String()
}

// Insight composes the narrative for options sold at the model's price.
func Insight(model breakeven.Model, options []breakeven.CostOption, volume float64, thresholds Thresholds) (Narrative, error) {
	selector, err := NewSelector(model, options, thresholds)
	if err != nil {
		return Narrative{}, err
	}
	return selector.Insight(volume), nil
}
