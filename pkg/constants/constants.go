// Package constants provides shared constants for the lease-ccr application.
package constants

import "time"

// Currency constants
const (
	// DecimalPlaces is the number of decimals kept when rounding currency
	DecimalPlaces = 2
)

// Lease defaults, taken from the dealer worksheet the solver reproduces.
const (
	// DefaultLTRFeeConstant is the fixed reference used for the flat LTR tax add-on
	DefaultLTRFeeConstant = 62.50

	DefaultTargetCash    = 1000.00
	DefaultTaxableFees   = 900.00
	DefaultNonTaxableFee = 62.50
	DefaultTaxRate       = 0.0725
	DefaultMoneyFactor   = 0.00293
	DefaultTermMonths    = 36
	DefaultCapCostBase   = 25040.00
	DefaultResidual      = 16276.00
)

// Solver defaults
const (
	// DefaultTolerance is the accepted distance between total and target cash
	DefaultTolerance = 0.005

	// DefaultMaxIterations bounds the number of evaluator calls per solve
	DefaultMaxIterations = 1000

	// DefaultLinearStep is the fine downward step of the linear scan
	DefaultLinearStep = 0.01

	// DefaultHybridStep is the coarse step of the hybrid scan
	DefaultHybridStep = 50.00

	// HybridThresholdFactor scales the hybrid step into its switch threshold
	HybridThresholdFactor = 1.5

	// DefaultHillClimbStep is the minimum payment move of the hill-climb
	DefaultHillClimbStep = 0.01

	// DefaultHillClimbGain scales the payment move by the current error
	DefaultHillClimbGain = 1.0

	// DefaultStrategy is the search strategy used when none is configured
	DefaultStrategy = "bisection"

	// DefaultRounding is the tax rounding policy used when none is configured
	DefaultRounding = "unrounded"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format of the iteration history
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. LEASECCR_LEASE_TARGETCASH
	EnvPrefix = "LEASECCR"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultServerReadTimeout bounds how long a request body may take to arrive
	DefaultServerReadTimeout = 15 * time.Second
)
