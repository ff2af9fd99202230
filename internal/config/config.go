// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/break-even/pkg/breakeven"
	"github.com/iwvelando/break-even/pkg/constants"
	"github.com/iwvelando/break-even/pkg/scenario"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment variables that override config keys,
// e.g. BREAKEVEN_UNITPRICE.
const EnvPrefix = "BREAKEVEN"

// Configuration holds all configuration for break-even.
type Configuration struct {
	UnitPrice float64                `yaml:"unitPrice" mapstructure:"unitPrice"`
	Options   []breakeven.CostOption `yaml:"options" mapstructure:"options"`
	Scenarios []scenario.Demand      `yaml:"scenarios" mapstructure:"scenarios"`
	Insight   scenario.Thresholds    `yaml:"insight" mapstructure:"insight"`
	Volume    VolumeConfig           `yaml:"volume" mapstructure:"volume"`
	Chart     ChartConfig            `yaml:"chart" mapstructure:"chart"`
	Logging   LoggingConfig          `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig           `yaml:"output,omitempty" mapstructure:"output"`
}

// VolumeConfig bounds the current production volume.
type VolumeConfig struct {
	Default int `yaml:"default" mapstructure:"default"`
	Max     int `yaml:"max" mapstructure:"max"`
}

// ChartConfig controls the revenue/cost curve and break-even bars.
type ChartConfig struct {
	Max      float64 `yaml:"max" mapstructure:"max"`
	Step     float64 `yaml:"step" mapstructure:"step"`
	BarScale float64 `yaml:"barScale" mapstructure:"barScale"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// DefaultOptions returns the three manufacturing options the calculator ships with.
func DefaultOptions() []breakeven.CostOption {
	return []breakeven.CostOption{
		breakeven.NewCostOption("Co-Packer", 2.80, 450000),
		breakeven.NewCostOption("Retrofit", 1.80, 888000),
		breakeven.NewCostOption("New Plant", 0.80, 1274000),
	}
}

// DefaultScenarios returns the low, medium, and high demand levels.
func DefaultScenarios() []scenario.Demand {
	return []scenario.Demand{
		{Name: "low", Volume: 350000},
		{Name: "medium", Volume: 500000},
		{Name: "high", Volume: 650000},
	}
}

// Default returns the built-in configuration.
func Default() *Configuration {
	conf := &Configuration{}
	conf.Normalize()
	return conf
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.Normalize()
	return &configuration, nil
}

// Normalize fills unset sections with the built-in defaults and derives
// missing option keys.
func (c *Configuration) Normalize() {
	if c.UnitPrice == 0 {
		c.UnitPrice = constants.DefaultUnitPrice
	}
	if c.Options == nil {
		c.Options = DefaultOptions()
	}
	for i := range c.Options {
		c.Options[i].Name = strings.TrimSpace(c.Options[i].Name)
		if c.Options[i].Key == "" {
			c.Options[i].Key = breakeven.KeyFromName(c.Options[i].Name)
		}
	}
	if c.Scenarios == nil {
		c.Scenarios = DefaultScenarios()
	}
	if c.Insight.HighVolume == 0 {
		c.Insight.HighVolume = constants.DefaultHighVolume
	}
	if c.Insight.LowVolume == 0 {
		c.Insight.LowVolume = constants.DefaultLowVolume
	}
	if c.Volume.Max == 0 {
		c.Volume.Max = constants.DefaultMaxVolume
	}
	if c.Volume.Default == 0 {
		c.Volume.Default = constants.DefaultVolume
	}
	if c.Chart.Max == 0 {
		c.Chart.Max = constants.DefaultCurveMax
	}
	if c.Chart.Step == 0 {
		c.Chart.Step = constants.DefaultCurveStep
	}
	if c.Chart.BarScale == 0 {
		c.Chart.BarScale = constants.DefaultBarScale
	}
}

// Validate returns an error when the configuration cannot drive the calculator.
func (c *Configuration) Validate() error {
	if c.UnitPrice <= 0 {
		return fmt.Errorf("unit price %.2f must be positive", c.UnitPrice)
	}
	if len(c.Options) == 0 {
		return fmt.Errorf("invalid configuration: %w", scenario.ErrEmptyOptionSet)
	}
	for _, o := range c.Options {
		if err := breakeven.ValidateOption(o); err != nil {
			return err
		}
	}
	for _, demand := range c.Scenarios {
		if strings.TrimSpace(demand.Name) == "" {
			return fmt.Errorf("demand scenario name cannot be empty")
		}
		if demand.Volume < 0 {
			return fmt.Errorf("demand scenario %s: volume %d cannot be negative", demand.Name, demand.Volume)
		}
	}
	if c.Volume.Max <= 0 {
		return fmt.Errorf("maximum volume %d must be positive", c.Volume.Max)
	}
	if c.Volume.Default < 0 || c.Volume.Default > c.Volume.Max {
		return fmt.Errorf("default volume %d must be between 0 and %d", c.Volume.Default, c.Volume.Max)
	}
	if _, err := breakeven.CurvePointCount(c.Chart.Max, c.Chart.Step); err != nil {
		return fmt.Errorf("chart range: %w", err)
	}
	if c.Chart.BarScale <= 0 {
		return fmt.Errorf("bar scale %.0f: %w", c.Chart.BarScale, breakeven.ErrInvalidRange)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	for _, o := range c.Options {
		if o.VariableCost >= c.UnitPrice {
			warnings = append(warnings, fmt.Sprintf("Option '%s' variable cost %.2f is not below unit price %.2f - break-even is undefined",
				o.Name, o.VariableCost, c.UnitPrice))
		}
	}

	for _, demand := range c.Scenarios {
		if demand.Volume > c.Volume.Max {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' volume %d exceeds maximum volume %d",
				demand.Name, demand.Volume, c.Volume.Max))
		}
	}

	if c.Insight.LowVolume >= c.Insight.HighVolume {
		warnings = append(warnings, fmt.Sprintf("Insight low volume %.0f is not below high volume %.0f - strategy notes will favour high volume",
			c.Insight.LowVolume, c.Insight.HighVolume))
	}

	if float64(c.Volume.Max) > c.Chart.Max {
		warnings = append(warnings, fmt.Sprintf("Chart maximum %.0f is below maximum volume %d", c.Chart.Max, c.Volume.Max))
	}

	return warnings
}

// Model returns the formula engine for the configured unit price.
func (c *Configuration) Model() breakeven.Model {
	return breakeven.NewModel(c.UnitPrice)
}

// Selector returns a scenario selector over the configured options.
func (c *Configuration) Selector() (*scenario.Selector, error) {
	return scenario.NewSelector(c.Model(), c.Options, c.Insight)
}
