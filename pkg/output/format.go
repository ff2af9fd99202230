// Package output provides utilities for formatting and displaying break-even results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/break-even/internal/widget"
	"github.com/iwvelando/break-even/pkg/breakeven"
	"github.com/iwvelando/break-even/pkg/constants"
	"github.com/iwvelando/break-even/pkg/format"
	"github.com/iwvelando/break-even/pkg/scenario"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Section selects which parts of a snapshot are written.
type Section uint8

const (
	SectionResults Section = 1 << iota
	SectionBars
	SectionScenarios
	SectionInsight
	SectionCurve

	SectionAll = SectionResults | SectionBars | SectionScenarios | SectionInsight | SectionCurve
)

func (s Section) has(section Section) bool {
	return s&section != 0
}

// Write renders the snapshot sections in the named output format.
func Write(w io.Writer, outputFormat string, snap widget.Snapshot, sections Section) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return Pretty(w, snap, sections)
	case constants.OutputFormatCSV:
		return CSV(w, snap, sections)
	case constants.OutputFormatJSON:
		return JSON(w, snap, sections)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
}

// Pretty outputs human-readable rather than machine-readable tables.
func Pretty(w io.Writer, snap widget.Snapshot, sections Section) error {
	p := message.NewPrinter(language.English)
	var err error
	printf := func(layout string, args ...interface{}) {
		if err == nil {
			_, err = p.Fprintf(w, layout, args...)
		}
	}

	if sections.has(SectionResults) {
		printf("--- Profit at %d units (unit price $%.2f) ---\n", snap.Volume, snap.UnitPrice)
		printf("Option          | Revenue         | Total Cost      | Profit          | Break-even\n")
		printf("______          | _______         | __________      | ______          | __________\n")
		for _, r := range snap.Results {
			printf("%-15s | $%-14.2f | $%-14.2f | %-15s | %s\n",
				r.Option.Name, r.Revenue, r.TotalCost, format.Currency(r.Profit), breakEvenText(r.BreakEven))
		}
		printf("\n")
	}

	if sections.has(SectionBars) {
		printf("--- Break-even volume ---\n")
		for _, bar := range snap.Bars {
			printf("%-15s | %-16s | %5.1f%% %s\n", bar.Option, breakEvenText(bar.BreakEven), bar.Width, barGlyphs(bar.Width))
		}
		printf("\n")
	}

	if sections.has(SectionScenarios) {
		printf("--- Demand scenarios ---\n")
		for _, row := range snap.Scenarios.Rows {
			printf("%s (%d units), best: %s\n", row.Scenario, row.Volume, row.Best)
			for _, cell := range row.Cells {
				printf("  %-15s | %-8s | %s\n", cell.Option, format.Compact(cell.Profit), cell.Classification)
			}
		}
		printf("\n")
	}

	if sections.has(SectionInsight) {
		printf("--- Insight ---\n%s\n\n", snap.Insight.Text)
	}

	if sections.has(SectionCurve) {
		printf("--- Revenue and cost ---\n")
		printf("%s\n", strings.Join(append([]string{"Volume"}, snap.Curve.Series...), " | "))
		for _, point := range snap.Curve.Points {
			printf("%.0f | $%.0f", point.Volume, point.Revenue)
			for _, cost := range point.Costs {
				printf(" | $%.0f", cost)
			}
			printf("\n")
		}
	}

	return err
}

// CSV outputs each section as a block of comma-separated values.
func CSV(w io.Writer, snap widget.Snapshot, sections Section) error {
	cw := csv.NewWriter(w)

	if sections.has(SectionResults) {
		_ = cw.Write([]string{"option", "volume", "revenue", "total cost", "profit", "contribution margin", "break-even"})
		for _, r := range snap.Results {
			_ = cw.Write([]string{
				r.Option.Name,
				strconv.Itoa(snap.Volume),
				money(r.Revenue),
				money(r.TotalCost),
				money(r.Profit),
				money(r.ContributionMargin),
				breakEvenCSV(r.BreakEven),
			})
		}
	}

	if sections.has(SectionBars) {
		_ = cw.Write([]string{"option", "break-even", "bar width"})
		for _, bar := range snap.Bars {
			_ = cw.Write([]string{bar.Option, breakEvenCSV(bar.BreakEven), strconv.FormatFloat(bar.Width, 'f', 2, 64)})
		}
	}

	if sections.has(SectionScenarios) {
		_ = cw.Write([]string{"scenario", "volume", "option", "profit", "classification"})
		for _, row := range snap.Scenarios.Rows {
			for _, cell := range row.Cells {
				_ = cw.Write([]string{row.Scenario, strconv.Itoa(row.Volume), cell.Option, money(cell.Profit), string(cell.Classification)})
			}
		}
	}

	if sections.has(SectionInsight) {
		_ = cw.Write([]string{"volume", "kind", "best", "worst", "insight"})
		_ = cw.Write([]string{strconv.Itoa(snap.Volume), string(snap.Insight.Kind), snap.Insight.Best.Option.Name, snap.Insight.Worst.Option.Name, snap.Insight.Text})
	}

	if sections.has(SectionCurve) {
		_ = cw.Write(append([]string{"volume"}, snap.Curve.Series...))
		for _, point := range snap.Curve.Points {
			record := []string{strconv.FormatFloat(point.Volume, 'f', 0, 64), money(point.Revenue)}
			for _, cost := range point.Costs {
				record = append(record, money(cost))
			}
			_ = cw.Write(record)
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVString returns the CSV rendering as a string.
func CSVString(snap widget.Snapshot, sections Section) (string, error) {
	var builder strings.Builder
	if err := CSV(&builder, snap, sections); err != nil {
		return "", fmt.Errorf("failed to render CSV: %w", err)
	}
	return builder.String(), nil
}

type jsonView struct {
	Volume    int                      `json:"volume"`
	UnitPrice float64                  `json:"unitPrice"`
	Results   []breakeven.ProfitResult `json:"results,omitempty"`
	Bars      []widget.Bar             `json:"bars,omitempty"`
	Scenarios *scenario.Table          `json:"scenarios,omitempty"`
	Insight   *widget.InsightView      `json:"insight,omitempty"`
	Curve     *widget.Curve            `json:"curve,omitempty"`
}

// JSON outputs the selected sections as one indented JSON document.
func JSON(w io.Writer, snap widget.Snapshot, sections Section) error {
	view := jsonView{Volume: snap.Volume, UnitPrice: snap.UnitPrice}
	if sections.has(SectionResults) {
		view.Results = snap.Results
	}
	if sections.has(SectionBars) {
		view.Bars = snap.Bars
	}
	if sections.has(SectionScenarios) {
		view.Scenarios = &snap.Scenarios
	}
	if sections.has(SectionInsight) {
		view.Insight = &snap.Insight
	}
	if sections.has(SectionCurve) {
		view.Curve = &snap.Curve
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}

func money(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func breakEvenText(be breakeven.BreakEvenVolume) string {
	if !be.Defined {
		return "undefined"
	}
	return format.Units(be.Units) + " units"
}

func breakEvenCSV(be breakeven.BreakEvenVolume) string {
	if !be.Defined {
		return ""
	}
	return strconv.FormatFloat(be.Units, 'f', 2, 64)
}

func barGlyphs(width float64) string {
	n := int(width / 5)
	if n < 0 {
		n = 0
	}
	if n > 30 {
		n = 30
	}
	return strings.Repeat("#", n)
}
