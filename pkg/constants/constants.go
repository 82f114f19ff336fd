// Package constants provides shared constants for the fi-forecast application.
package constants

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Return model defaults, all expressed as annual percentages.
const (
	// ShortTermReturnPercent applies to the first RegimeSwitchYears of contributions.
	ShortTermReturnPercent = 12.0

	// LongTermReturnPercent applies after RegimeSwitchYears.
	LongTermReturnPercent = 14.0

	// RegimeSwitchYears is the horizon at which the long-term rate takes over.
	RegimeSwitchYears = 7

	// FixedIncomeReturnPercent compounds the existing fixed-income corpus.
	FixedIncomeReturnPercent = 7.0

	// GrowthAssetReturnPercent compounds the existing growth-asset corpus.
	GrowthAssetReturnPercent = 12.0

	// RetirementReturnPercent is the portfolio return once withdrawals begin.
	RetirementReturnPercent = 10.0

	// InflationPercent inflates expenses and steps up withdrawals.
	InflationPercent = 7.0

	// LifestyleBufferPercent is the markup applied to inflated expenses.
	LifestyleBufferPercent = 25.0

	// LTCGTaxPercent is the flat long-term capital gains rate used to gross up withdrawals.
	LTCGTaxPercent = 12.5

	// SustainabilityBufferPercent is the share of the starting corpus that must survive.
	SustainabilityBufferPercent = 10.0
)

// Age limits
const (
	// FICeilingAge is the oldest age the solver will search or return.
	FICeilingAge = 60

	// OptimizationTargetAge is the FI age at which optimization is skipped.
	OptimizationTargetAge = 45

	// UnreachableBaselineAge stands in for a baseline that never reaches FI.
	UnreachableBaselineAge = 100

	// MaxSearchIterations bounds the FI age binary search.
	MaxSearchIterations = 100

	// MaxAgeNeedsImprovement is the planning horizon for needs_improvement health.
	MaxAgeNeedsImprovement = 70

	// MaxAgeGenerallyHealthy is the planning horizon for generally_healthy health.
	MaxAgeGenerallyHealthy = 80

	// MaxAgeVeryHealthy is the planning horizon for very_healthy health.
	MaxAgeVeryHealthy = 90
)

// Scoring weights for the local recommendation scorer.
const (
	ScoreWeightYearsSaved = 5.0
	ScoreWeightStepUp     = 3.0
	ScoreWeightIncrease   = 2.0
	ScoreTargetAgeBonus   = 20.0
	MaxAlternatives       = 2
)

// Cache defaults
const (
	// DefaultCacheCapacity bounds the per-run projection cache.
	DefaultCacheCapacity = 1000

	// CacheEvictionFraction is the share of oldest entries dropped on overflow.
	CacheEvictionFraction = 0.2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix scopes environment overrides for the configuration.
	EnvPrefix = "FI"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)

// Advisory defaults
const (
	// DefaultAdvisoryTimeoutSeconds bounds each remote advisory call.
	DefaultAdvisoryTimeoutSeconds = 8

	// DefaultAdvisoryMaxRetries is the retry count per remote provider.
	DefaultAdvisoryMaxRetries = 1

	// DefaultMaxConcurrentRuns bounds background optimization runs.
	DefaultMaxConcurrentRuns = 4
)

// StepUpTestValues are the annual step-up percentages tried on their own.
var StepUpTestValues = []float64{5, 7, 10, 12, 15}

// IncreaseTestValues are the investment increase percentages tried on their own.
var IncreaseTestValues = []float64{10, 15, 20, 25, 30, 50}

// CombinedTestValues are the (step-up, increase) pairs tried together.
var CombinedTestValues = [][2]float64{
	{5, 10},
	{5, 20},
	{7, 15},
	{10, 10},
	{10, 20},
}
