// Package widget owns the state behind one calculator view: the configured
// options and the currently selected production volume. A Session produces
// the snapshots that renderers and the HTTP API present.
package widget

import (
	"errors"
	"fmt"
	"sync"

	"github.com/iwvelando/break-even/internal/config"
	"github.com/iwvelando/break-even/pkg/breakeven"
	"github.com/iwvelando/break-even/pkg/scenario"
	"github.com/iwvelando/break-even/pkg/validation"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by every Session method after Close.
var ErrSessionClosed = errors.New("session closed")

// Session is safe for concurrent use.
type Session struct {
	logger   *zap.Logger
	conf     config.Configuration
	selector *scenario.Selector

	mu     sync.RWMutex
	volume int
	closed bool
}

// Bar is an option's break-even volume scaled for a horizontal bar.
type Bar struct {
	Option    string                    `json:"option"`
	Key       string                    `json:"key"`
	BreakEven breakeven.BreakEvenVolume `json:"breakEven"`
	Width     float64                   `json:"width"` // percent of the bar scale, may exceed 100
}

// InsightView pairs the narrative facts with their rendered text.
type InsightView struct {
	scenario.Narrative
	Text string `json:"text"`
}

// Curve is the revenue line and one total cost line per option.
type Curve struct {
	Series []string               `json:"series"`
	Points []breakeven.CurvePoint `json:"points"`
}

// Snapshot is everything a view shows for one volume.
type Snapshot struct {
	Volume    int                      `json:"volume"`
	UnitPrice float64                  `json:"unitPrice"`
	Results   []breakeven.ProfitResult `json:"results"`
	Bars      []Bar                    `json:"bars"`
	Scenarios scenario.Table           `json:"scenarios"`
	Insight   InsightView              `json:"insight"`
	Curve     Curve                    `json:"curve"`
}

// NewSession validates conf and starts a session at its default volume.
// The configuration is copied; later changes to conf are not observed.
func NewSession(logger *zap.Logger, conf *config.Configuration) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	owned := *conf
	owned.Options = append([]breakeven.CostOption(nil), conf.Options...)
	owned.Scenarios = append([]scenario.Demand(nil), conf.Scenarios...)
	owned.Normalize()

	if err := owned.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warning := range owned.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "widget.NewSession"),
		)
	}

	selector, err := owned.Selector()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("session started",
		zap.String("op", "widget.NewSession"),
		zap.Int("options", len(owned.Options)),
		zap.Int("scenarios", len(owned.Scenarios)),
		zap.Int("volume", owned.Volume.Default),
	)

	return &Session{
		logger:   logger,
		conf:     owned,
		selector: selector,
		volume:   owned.Volume.Default,
	}, nil
}

// Close ends the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.logger.Debug("session closed", zap.String("op", "widget.Close"))
	return nil
}

// MaxVolume is the largest volume SetVolume accepts.
func (s *Session) MaxVolume() int {
	return s.conf.Volume.Max
}

// Options returns the configured options in order.
func (s *Session) Options() []breakeven.CostOption {
	return s.selector.Options()
}

// Configuration returns a copy of the session's configuration.
func (s *Session) Configuration() (config.Configuration, error) {
	if err := s.check(0); err != nil {
		return config.Configuration{}, err
	}
	conf := s.conf
	conf.Options = append([]breakeven.CostOption(nil), s.conf.Options...)
	conf.Scenarios = append([]scenario.Demand(nil), s.conf.Scenarios...)
	return conf, nil
}

// SetVolume changes the current volume. Negative volumes and volumes above
// MaxVolume are rejected with validation.ErrInvalidVolume.
func (s *Session) SetVolume(volume int) error {
	if err := validation.ValidateVolume(volume, s.conf.Volume.Max); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.volume = volume
	s.logger.Debug("volume changed",
		zap.String("op", "widget.SetVolume"),
		zap.Int("volume", volume),
	)
	return nil
}

// Volume returns the current volume.
func (s *Session) Volume() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrSessionClosed
	}
	return s.volume, nil
}

func (s *Session) check(volume int) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSessionClosed
	}
	return validation.ValidateVolume(volume, s.conf.Volume.Max)
}

// Evaluate returns every option's figures at volume, in configured order.
func (s *Session) Evaluate(volume int) ([]breakeven.ProfitResult, error) {
	if err := s.check(volume); err != nil {
		return nil, err
	}
	return s.selector.Model().EvaluateAll(s.selector.Options(), float64(volume)), nil
}

// Scenarios returns the best-option table for the configured demand levels.
func (s *Session) Scenarios() (scenario.Table, error) {
	if err := s.check(0); err != nil {
		return scenario.Table{}, err
	}
	return s.selector.Scenarios(s.conf.Scenarios)
}

// Insight returns the narrative for volume.
func (s *Session) Insight(volume int) (InsightView, error) {
	if err := s.check(volume); err != nil {
		return InsightView{}, err
	}
	narrative := s.selector.Insight(float64(volume))
	return InsightView{Narrative: narrative, Text: narrative.Text()}, nil
}

// Bars returns the break-even bars. Options without a defined break-even get
// a zero-width bar.
func (s *Session) Bars() ([]Bar, error) {
	if err := s.check(0); err != nil {
		return nil, err
	}
	model := s.selector.Model()
	options := s.selector.Options()
	bars := make([]Bar, 0, len(options))
	for _, o := range options {
		bar := Bar{Option: o.Name, Key: o.ID()}
		if width, err := model.BarWidth(o, s.conf.Chart.BarScale); err == nil {
			bar.Width = width
			bar.BreakEven, _ = model.BreakEven(o)
		} else if !errors.Is(err, breakeven.ErrNonPositiveMargin) {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// Curve samples revenue and total cost across the configured chart range.
func (s *Session) Curve() (Curve, error) {
	if err := s.check(0); err != nil {
		return Curve{}, err
	}
	options := s.selector.Options()
	points, err := s.selector.Model().Curve(options, s.conf.Chart.Max, s.conf.Chart.Step)
	if err != nil {
		return Curve{}, err
	}
	series := make([]string, 0, len(options)+1)
	series = append(series, "Revenue")
	for _, o := range options {
		series = append(series, o.Name+" Total Cost")
	}
	return Curve{Series: series, Points: points}, nil
}

// Snapshot returns the view at the current volume.
func (s *Session) Snapshot() (Snapshot, error) {
	volume, err := s.Volume()
	if err != nil {
		return Snapshot{}, err
	}
	return s.SnapshotAt(volume)
}

// SnapshotAt returns the view at volume without changing the current volume.
func (s *Session) SnapshotAt(volume int) (Snapshot, error) {
	results, err := s.Evaluate(volume)
	if err != nil {
		return Snapshot{}, err
	}
	bars, err := s.Bars()
	if err != nil {
		return Snapshot{}, err
	}
	table, err := s.Scenarios()
	if err != nil {
		return Snapshot{}, err
	}
	insight, err := s.Insight(volume)
	if err != nil {
		return Snapshot{}, err
	}
	curve, err := s.Curve()
	if err != nil {
		return Snapshot{}, err
	}

	s.logger.Debug("snapshot computed",
		zap.String("op", "widget.SnapshotAt"),
		zap.Int("volume", volume),
		zap.String("insight", string(insight.Kind)),
		zap.String("best", insight.Best.Option.Name),
	)

	return Snapshot{
		Volume:    volume,
		UnitPrice: s.conf.UnitPrice,
		Results:   results,
		Bars:      bars,
		Scenarios: table,
		Insight:   insight,
		Curve:     curve,
	}, nil
}
