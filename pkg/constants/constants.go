// Package constants provides shared constants for the break-even application.
package constants

// Default dataset constants. These reproduce the three manufacturing options
// the calculator ships with.
const (
	// DefaultUnitPrice is the selling price per unit shared by all options
	DefaultUnitPrice = 4.00

	// DefaultVolume is the production volume a new session starts at
	DefaultVolume = 500000

	// DefaultMaxVolume is the upper bound accepted for the current volume
	DefaultMaxVolume = 1000000
)

// Insight thresholds
const (
	// DefaultHighVolume is the volume above which the lowest variable cost option is favoured
	DefaultHighVolume = 600000

	// DefaultLowVolume is the volume below which the lowest fixed cost option is favoured
	DefaultLowVolume = 400000
)

// Chart constants
const (
	// DefaultCurveMax is the largest volume sampled for the revenue/cost curve
	DefaultCurveMax = 1000000

	// DefaultCurveStep is the sampling interval of the revenue/cost curve
	DefaultCurveStep = 25000

	// DefaultBarScale is the volume that corresponds to a 100% break-even bar
	DefaultBarScale = 500000

	// MaxCurvePoints caps the number of samples a single curve may hold
	MaxCurvePoints = 10000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
