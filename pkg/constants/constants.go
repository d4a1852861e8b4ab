// Package constants provides shared constants for the loan-calculator application.
package constants

// DateTimeLayout is the format used for schedule start dates in config files
// and for the month labels in output.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// CurrencyPlaces is the number of decimal places of a currency amount
	CurrencyPlaces = 2

	// InternalPrecision is the number of decimal places kept by the
	// fixed-point helpers between operations (a 10^10 scale).
	InternalPrecision = 10

	// RatePrecision is the number of decimal places kept for periodic rates
	// and compound growth factors.
	RatePrecision = 16

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// MaxLoanAmount is the policy ceiling above which a warning is emitted.
	MaxLoanAmount = 50000000

	// MaxProvidentFundAmount is the usual ceiling of a provident fund leg.
	MaxProvidentFundAmount = 1200000

	// MaxTermYears is the longest mortgage term normally granted.
	MaxTermYears = 30

	// MaxAnnualRatePercent is the rate above which input is considered suspicious.
	MaxAnnualRatePercent = 24
)

// Risk thresholds. These are business policy cutoffs, inclusive upper bounds.
const (
	// PaymentToIncomeLow is the highest payment-to-income ratio rated low risk.
	PaymentToIncomeLow = 0.3

	// PaymentToIncomeMedium is the highest payment-to-income ratio rated medium risk.
	PaymentToIncomeMedium = 0.5

	// LoanToValueLow is the highest loan-to-value ratio rated low risk.
	LoanToValueLow = 0.6

	// LoanToValueMedium is the highest loan-to-value ratio rated medium risk.
	LoanToValueMedium = 0.8

	// InterestRatioLow is the highest total-interest/principal ratio rated low risk.
	InterestRatioLow = 0.5

	// InterestRatioMedium is the highest total-interest/principal ratio rated medium risk.
	InterestRatioMedium = 1.0

	// RateSpreadMedium is the highest spread over the market rate, in
	// percentage points, rated medium risk. A spread at or below zero is low.
	RateSpreadMedium = 0.5

	// NeutralScore is returned by scoring functions lacking the context they need.
	NeutralScore = 50
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

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimitCapacity is the number of API requests a client may
	// make per refill window.
	DefaultRateLimitCapacity = 60

	// DefaultRateLimitRefill is the refill window of the rate limiter.
	DefaultRateLimitRefill = "1m"

	// DefaultCacheTTL is how long cached API responses live.
	DefaultCacheTTL = "10m"

	// DefaultBatchWorkers bounds the parallelism of batch evaluations.
	DefaultBatchWorkers = 8
)
