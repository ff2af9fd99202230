package scenario

import (
	"fmt"

	"github.com/iwvelando/break-even/pkg/breakeven"
)

// Classification describes how a scenario table cell is presented.
type Classification string

const (
	// ClassBest marks the scenario's most profitable option when it is not losing money.
	ClassBest Classification = "best"
	// ClassPositive marks a break-even or profitable option that is not the best.
	ClassPositive Classification = "positive"
	// ClassNegative marks a loss, including a best option that still loses money.
	ClassNegative Classification = "negative"
)

// Demand is a named demand level.
type Demand struct {
	Name   string `json:"name" yaml:"name"`
	Volume int    `json:"volume" yaml:"volume"`
}

// Cell is one option's outcome in one scenario.
type Cell struct {
	Option         string         `json:"option"`
	Key            string         `json:"key"`
	Profit         float64        `json:"profit"`
	Classification Classification `json:"classification"`
}

// Row holds every option's cell for one demand level, in configured option order.
type Row struct {
	Scenario string `json:"scenario"`
	Volume   int    `json:"volume"`
	Best     string `json:"best"`
	Cells    []Cell `json:"cells"`
}

// Table is the best-option-per-scenario table.
type Table struct {
	Rows []Row `json:"rows"`
}

// Cell looks up a cell by scenario name and option name.
func (t Table) Cell(scenario, option string) (Cell, bool) {
	for _, row := range t.Rows {
		if row.Scenario != scenario {
			continue
		}
		for _, cell := range row.Cells {
			if cell.Option == option {
				return cell, true
			}
		}
	}
	return Cell{}, false
}

// ByScenario indexes the table by scenario name, then option name.
func (t Table) ByScenario() map[string]map[string]Cell {
	index := make(map[string]map[string]Cell, len(t.Rows))
	for _, row := range t.Rows {
		cells := make(map[string]Cell, len(row.Cells))
		for _, cell := range row.Cells {
			cells[cell.Option] = cell
		}
		index[row.Scenario] = cells
	}
	return index
}

// Scenarios builds the table for the given demand levels, in the given order.
func (s *Selector) Scenarios(demands []Demand) (Table, error) {
	seen := make(map[string]struct{}, len(demands))
	table := Table{Rows: make([]Row, 0, len(demands))}
	for _, demand := range demands {
		if _, dup := seen[demand.Name]; dup {
			return Table{}, fmt.Errorf("%w: %q", ErrDuplicateScenario, demand.Name)
		}
		seen[demand.Name] = struct{}{}
		table.Rows = append(table.Rows, s.row(demand))
	}
	return table, nil
}

func (s *Selector) row(demand Demand) Row {
	results := s.model.EvaluateAll(s.options, float64(demand.Volume))
	best := bestOf(results)

	row := Row{
		Scenario: demand.Name,
		Volume:   demand.Volume,
		Best:     best.Option.Name,
		Cells:    make([]Cell, 0, len(results)),
	}
	for _, r := range results {
		row.Cells = append(row.Cells, Cell{
			Option:         r.Option.Name,
			Key:            r.Option.ID(),
			Profit:         r.Profit,
			Classification: classify(r, best),
		})
	}
	return row
}

func classify(r, best breakeven.ProfitResult) Classification {
	switch {
	case r.Profit < 0:
		return ClassNegative
	case r.Option.Name == best.Option.Name:
		return ClassBest
	default:
		return ClassPositive
	}
}

// RankScenarios builds the scenario table for options sold at the model's price.
func RankScenarios(model breakeven.Model, options []breakeven.CostOption, demands []Demand) (Table, error) {
	selector, err := NewSelector(model, options, DefaultThresholds())
	if err != nil {
		return Table{}, err
	}
	return selector.Scenarios(demands)
}
