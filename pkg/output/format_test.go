package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/break-even/internal/config"
	"github.com/iwvelando/break-even/internal/widget"
	"github.com/iwvelando/break-even/pkg/breakeven"
	"go.uber.org/zap"
)

func testSnapshot(t *testing.T, volume int) widget.Snapshot {
	t.Helper()
	conf := config.Default()
	conf.Options = append(conf.Options, breakeven.NewCostOption("Reseller", 4.50, 0))
	session, err := widget.NewSession(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	snap, err := session.SnapshotAt(volume)
	if err != nil {
		t.Fatalf("SnapshotAt() error = %v", err)
	}
	return snap
}

func TestPretty(t *testing.T) {
	snap := testSnapshot(t, 650000)

	var buf bytes.Buffer
	if err := Pretty(&buf, snap, SectionAll); err != nil {
		t.Fatalf("Pretty() error = %v", err)
	}
	output := buf.String()

	expected := []string{
		"--- Profit at 650,000 units (unit price $4.00) ---",
		"New Plant",
		"$806,000.00",
		"375,000 units",
		"undefined",
		"--- Demand scenarios ---",
		"high (650,000 units), best: New Plant",
		"--- Insight ---",
		"New Plant's lower variable cost ($0.80)",
		"--- Revenue and cost ---",
		"Volume | Revenue | Co-Packer Total Cost",
	}
	for _, fragment := range expected {
		if !strings.Contains(output, fragment) {
			t.Errorf("Pretty output missing %q", fragment)
		}
	}
}

func TestPrettySections(t *testing.T) {
	snap := testSnapshot(t, 350000)

	var buf bytes.Buffer
	if err := Pretty(&buf, snap, SectionInsight); err != nil {
		t.Fatalf("Pretty() error = %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "all options operate at a loss") {
		t.Errorf("expected all-loss insight, got %q", output)
	}
	if strings.Contains(output, "Demand scenarios") || strings.Contains(output, "Revenue and cost") {
		t.Errorf("unrequested sections were written: %q", output)
	}
}

func TestCSV(t *testing.T) {
	snap := testSnapshot(t, 500000)

	rendered, err := CSVString(snap, SectionScenarios)
	if err != nil {
		t.Fatalf("CSVString() error = %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(rendered)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	// header + 3 scenarios x 4 options
	if len(records) != 13 {
		t.Fatalf("expected 13 records, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "scenario,volume,option,profit,classification" {
		t.Errorf("unexpected header %v", records[0])
	}
	if strings.Join(records[1], ",") != "low,350000,Co-Packer,-30000.00,negative" {
		t.Errorf("unexpected first row %v", records[1])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestCSVReportsWriteError(t *testing.T) {
	snap := testSnapshot(t, 500000)

	if err := CSV(failingWriter{}, snap, SectionAll); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected write error to be returned, got %v", err)
	}
	if err := Write(failingWriter{}, "csv", snap, SectionResults); err == nil {
		t.Fatal("expected Write to return the CSV error")
	}
}

func TestCSVUndefinedBreakEven(t *testing.T) {
	snap := testSnapshot(t, 500000)

	rendered, err := CSVString(snap, SectionResults)
	if err != nil {
		t.Fatalf("CSVString() error = %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(rendered)).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	last := records[len(records)-1]
	if last[0] != "Reseller" || last[6] != "" {
		t.Errorf("expected empty break-even for Reseller, got %v", last)
	}
	if records[1][6] != "375000.00" {
		t.Errorf("expected Co-Packer break-even 375000.00, got %s", records[1][6])
	}
}

func TestJSON(t *testing.T) {
	snap := testSnapshot(t, 500000)

	var buf bytes.Buffer
	if err := JSON(&buf, snap, SectionResults|SectionInsight); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON output: %v", err)
	}
	if _, ok := decoded["results"]; !ok {
		t.Error("expected results in JSON output")
	}
	insight, ok := decoded["insight"].(map[string]interface{})
	if !ok {
		t.Fatal("expected insight object in JSON output")
	}
	if insight["kind"] != "mixed" {
		t.Errorf("expected mixed insight, got %v", insight["kind"])
	}
	if _, ok := insight["text"].(string); !ok {
		t.Error("expected insight text in JSON output")
	}
	if _, ok := decoded["curve"]; ok {
		t.Error("curve should be omitted when not requested")
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	snap := testSnapshot(t, 500000)
	if err := Write(&bytes.Buffer{}, "xml", snap, SectionAll); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
