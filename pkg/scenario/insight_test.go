package scenario

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/break-even/pkg/breakeven"
)

func TestInsight(t *testing.T) {
	s := defaultSelector(t)

	tests := []struct {
		name     string
		volume   float64
		kind     Kind
		best     string
		worst    string
		strategy StrategyKind
		favoured string
		text     string
	}{
		{
			name:     "All options at a loss",
			volume:   350000,
			kind:     KindAllLoss,
			best:     "Co-Packer",
			worst:    "New Plant",
			strategy: StrategyLowVolume,
			favoured: "Co-Packer",
			text: "At 350,000 units, all options operate at a loss. You need to reach at least 375,000 units to break even with the most conservative option." +
				" At lower volumes, Co-Packer's lower fixed costs minimize risk.",
		},
		{
			name:     "Mixed results",
			volume:   390000,
			kind:     KindMixed,
			best:     "Co-Packer",
			worst:    "Retrofit",
			strategy: StrategyLowVolume,
			favoured: "Co-Packer",
			text: "At 390,000 units, Co-Packer is the most profitable option ($18K), while Retrofit is still operating at a loss (-$30K)." +
				" At lower volumes, Co-Packer's lower fixed costs minimize risk.",
		},
		{
			name:   "Leader without strategy",
			volume: 500000,
			kind:   KindLeader,
			best:   "New Plant",
			worst:  "Co-Packer",
			text:   "At 500,000 units, New Plant generates the highest profit ($326K). The difference from the least profitable option is $176K.",
		},
		{
			name:     "Leader at high volume",
			volume:   650000,
			kind:     KindLeader,
			best:     "New Plant",
			worst:    "Co-Packer",
			strategy: StrategyHighVolume,
			favoured: "New Plant",
			text: "At 650,000 units, New Plant generates the highest profit ($806K). The difference from the least profitable option is $476K." +
				" At high volumes, New Plant's lower variable cost ($0.80) delivers the best margins.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := s.Insight(tt.volume)
			if n.Kind != tt.kind {
				t.Errorf("kind = %s, expected %s", n.Kind, tt.kind)
			}
			if n.Best.Option.Name != tt.best {
				t.Errorf("best = %s, expected %s", n.Best.Option.Name, tt.best)
			}
			if n.Worst.Option.Name != tt.worst {
				t.Errorf("worst = %s, expected %s", n.Worst.Option.Name, tt.worst)
			}
			if tt.strategy == "" {
				if n.Strategy != nil {
					t.Errorf("expected no strategy, got %+v", n.Strategy)
				}
			} else {
				if n.Strategy == nil {
					t.Fatalf("expected %s strategy, got none", tt.strategy)
				}
				if n.Strategy.Kind != tt.strategy || n.Strategy.Option.Name != tt.favoured {
					t.Errorf("strategy = %s/%s, expected %s/%s", n.Strategy.Kind, n.Strategy.Option.Name, tt.strategy, tt.favoured)
				}
			}
			if got := n.Text(); got != tt.text {
				t.Errorf("text mismatch\n got: %s\nwant: %s", got, tt.text)
			}
		})
	}
}

func TestInsightAllLossCitesMinimumBreakEven(t *testing.T) {
	n, err := Insight(breakeven.NewModel(4.00), defaultOptions(), 350000, DefaultThresholds())
	if err != nil {
		t.Fatalf("Insight() error = %v", err)
	}
	if n.Kind != KindAllLoss {
		t.Fatalf("expected all-loss, got %s", n.Kind)
	}
	if !n.MinBreakEven.Defined || math.Abs(n.MinBreakEven.Units-375000) > 1e-6 {
		t.Fatalf("expected minimum break-even 375000, got %+v", n.MinBreakEven)
	}
	if math.Abs(n.Best.Profit+30000) > 1e-6 {
		t.Errorf("expected best profit -30000, got %v", n.Best.Profit)
	}
}

func TestInsightStrategyFollowsConfiguration(t *testing.T) {
	options := []breakeven.CostOption{
		breakeven.NewCostOption("Automated Line", 0.50, 2000000),
		breakeven.NewCostOption("Contract Shop", 3.10, 100000),
	}

	high, err := Insight(breakeven.NewModel(4.00), options, 900000, DefaultThresholds())
	if err != nil {
		t.Fatalf("Insight() error = %v", err)
	}
	if !strings.Contains(high.Text(), "Automated Line's lower variable cost ($0.50)") {
		t.Errorf("expected strategy to name Automated Line, got %q", high.Text())
	}

	low, err := Insight(breakeven.NewModel(4.00), options, 50000, DefaultThresholds())
	if err != nil {
		t.Fatalf("Insight() error = %v", err)
	}
	if !strings.Contains(low.Text(), "Contract Shop's lower fixed costs") {
		t.Errorf("expected strategy to name Contract Shop, got %q", low.Text())
	}
	if strings.Contains(low.Text(), "Co-Packer") || strings.Contains(high.Text(), "New Plant") {
		t.Error("strategy clause leaked a name from the default option set")
	}
}

func TestInsightThresholdsAreExclusive(t *testing.T) {
	thresholds := Thresholds{HighVolume: 600000, LowVolume: 400000}
	for _, volume := range []float64{400000, 600000} {
		n, err := Insight(breakeven.NewModel(4.00), defaultOptions(), volume, thresholds)
		if err != nil {
			t.Fatalf("Insight() error = %v", err)
		}
		if n.Strategy != nil {
			t.Errorf("volume %v: expected no strategy at the threshold, got %s", volume, n.Strategy.Kind)
		}
	}
}

func TestInsightWithoutDefinedBreakEven(t *testing.T) {
	options := []breakeven.CostOption{
		breakeven.NewCostOption("Reseller", 4.50, 0),
		breakeven.NewCostOption("Importer", 5.00, 0),
	}
	n, err := Insight(breakeven.NewModel(4.00), options, 500000, DefaultThresholds())
	if err != nil {
		t.Fatalf("Insight() error = %v", err)
	}
	if n.MinBreakEven.Defined {
		t.Fatal("expected undefined minimum break-even")
	}
	if n.Kind != KindLeader {
		t.Errorf("expected leader branch when no break-even exists, got %s", n.Kind)
	}
	if n.Best.Option.Name != "Reseller" {
		t.Errorf("expected Reseller to lose least, got %s", n.Best.Option.Name)
	}
}

func TestInsightNonPositiveMarginStillRanks(t *testing.T) {
	options := append(defaultOptions(), breakeven.NewCostOption("Reseller", 4.50, 0))
	n, err := Insight(breakeven.NewModel(4.00), options, 500000, DefaultThresholds())
	if err != nil {
		t.Fatalf("Insight() error = %v", err)
	}
	if n.Kind != KindMixed {
		t.Fatalf("expected mixed branch, got %s", n.Kind)
	}
	if n.Worst.Option.Name != "Reseller" {
		t.Errorf("expected Reseller to rank last, got %s", n.Worst.Option.Name)
	}
}

func TestInsightEmptyOptionSet(t *testing.T) {
	if _, err := Insight(breakeven.NewModel(4.00), nil, 500000, DefaultThresholds()); !errors.Is(err, ErrEmptyOptionSet) {
		t.Fatalf("expected ErrEmptyOptionSet, got %v", err)
	}
}
