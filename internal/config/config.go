// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iwvelando/fi-forecast/internal/advisor"
	"github.com/iwvelando/fi-forecast/internal/optimizer"
	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/finance"
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"github.com/iwvelando/fi-forecast/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Configuration holds all configuration for fi-forecast.
type Configuration struct {
	Logging     LoggingConfig       `yaml:"logging,omitempty" mapstructure:"logging"`
	Output      OutputConfig        `yaml:"output,omitempty" mapstructure:"output"`
	Plan        PlanConfig          `yaml:"plan" mapstructure:"plan"`
	Assumptions finance.Assumptions `yaml:"assumptions,omitempty" mapstructure:"assumptions"`
	Optimizer   OptimizerConfig     `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Advisory    AdvisoryConfig      `yaml:"advisory,omitempty" mapstructure:"advisory"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, yaml
}

// PlanConfig is the planning input as written in the config file.
type PlanConfig struct {
	CurrentAge                int     `yaml:"currentAge" mapstructure:"currentAge"`
	MonthlyExpense            float64 `yaml:"monthlyExpense" mapstructure:"monthlyExpense"`
	MonthlyInvestment         float64 `yaml:"monthlyInvestment" mapstructure:"monthlyInvestment"`
	HealthStatus              string  `yaml:"healthStatus" mapstructure:"healthStatus"`
	ExistingFixedIncomeCorpus float64 `yaml:"existingFixedIncomeCorpus,omitempty" mapstructure:"existingFixedIncomeCorpus"`
	ExistingGrowthCorpus      float64 `yaml:"existingGrowthCorpus,omitempty" mapstructure:"existingGrowthCorpus"`
}

// OptimizerConfig tunes the scenario search and the background host.
type OptimizerConfig struct {
	TargetAge             int         `yaml:"targetAge,omitempty" mapstructure:"targetAge"`
	StepUpValues          []float64   `yaml:"stepUpValues,omitempty" mapstructure:"stepUpValues"`
	IncreaseValues        []float64   `yaml:"increaseValues,omitempty" mapstructure:"increaseValues"`
	CombinedValues        [][]float64 `yaml:"combinedValues,omitempty" mapstructure:"combinedValues"`
	CacheCapacity         int         `yaml:"cacheCapacity,omitempty" mapstructure:"cacheCapacity"`
	CacheEvictionFraction float64     `yaml:"cacheEvictionFraction,omitempty" mapstructure:"cacheEvictionFraction"`
	MaxConcurrentRuns     int         `yaml:"maxConcurrentRuns,omitempty" mapstructure:"maxConcurrentRuns"`
}

// AdvisoryConfig lists remote recommendation providers in priority order.
type AdvisoryConfig struct {
	TimeoutSeconds int              `yaml:"timeoutSeconds,omitempty" mapstructure:"timeoutSeconds"`
	Providers      []ProviderConfig `yaml:"providers,omitempty" mapstructure:"providers"`
}

// ProviderConfig describes one remote advisory provider. The API key is read
// from the environment variable named by APIKeyEnv. An unset MaxRetries uses
// the default retry count.
type ProviderConfig struct {
	Name       string `yaml:"name" mapstructure:"name"`
	BaseURL    string `yaml:"baseURL" mapstructure:"baseURL"`
	APIKeyEnv  string `yaml:"apiKeyEnv,omitempty" mapstructure:"apiKeyEnv"`
	MaxRetries *int   `yaml:"maxRetries,omitempty" mapstructure:"maxRetries"`
}

// Default returns a configuration with every default filled in and an empty
// plan.
func Default() Configuration {
	options := optimizer.DefaultOptions()
	combined := make([][]float64, 0, len(options.CombinedValues))
	for _, pair := range options.CombinedValues {
		combined = append(combined, []float64{pair[0], pair[1]})
	}

	return Configuration{
		Logging:     LoggingConfig{Level: "info", Format: "console"},
		Output:      OutputConfig{Format: constants.OutputFormatPretty},
		Plan:        PlanConfig{HealthStatus: planning.DefaultHealthStatus.String()},
		Assumptions: finance.DefaultAssumptions(),
		Optimizer: OptimizerConfig{
			TargetAge:             options.TargetAge,
			StepUpValues:          options.StepUpValues,
			IncreaseValues:        options.IncreaseValues,
			CombinedValues:        combined,
			CacheCapacity:         options.CacheCapacity,
			CacheEvictionFraction: options.CacheEvictionFraction,
			MaxConcurrentRuns:     constants.DefaultMaxConcurrentRuns,
		},
		Advisory: AdvisoryConfig{TimeoutSeconds: constants.DefaultAdvisoryTimeoutSeconds},
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Keys absent from the file keep their defaults, and
// FI_-prefixed environment variables (FI_PLAN_CURRENTAGE, ...) override
// file values. A .env file next to the config or in the working directory
// is loaded first when present.
func LoadConfiguration(configPath string) (*Configuration, error) {
	loadEnvFile(configPath)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	configuration := Default()
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

func loadEnvFile(configPath string) {
	candidates := []string{filepath.Join(filepath.Dir(configPath), ".env"), ".env"}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Normalize fills unset values with defaults.
func (c *Configuration) Normalize() {
	defaults := Default()
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Plan.HealthStatus == "" {
		c.Plan.HealthStatus = defaults.Plan.HealthStatus
	}
	c.Assumptions.Normalize()
	if c.Optimizer.TargetAge <= 0 {
		c.Optimizer.TargetAge = defaults.Optimizer.TargetAge
	}
	if c.Optimizer.CacheCapacity <= 0 {
		c.Optimizer.CacheCapacity = defaults.Optimizer.CacheCapacity
	}
	if c.Optimizer.CacheEvictionFraction <= 0 || c.Optimizer.CacheEvictionFraction > 1 {
		c.Optimizer.CacheEvictionFraction = defaults.Optimizer.CacheEvictionFraction
	}
	if c.Optimizer.MaxConcurrentRuns <= 0 {
		c.Optimizer.MaxConcurrentRuns = defaults.Optimizer.MaxConcurrentRuns
	}
	if c.Advisory.TimeoutSeconds <= 0 {
		c.Advisory.TimeoutSeconds = defaults.Advisory.TimeoutSeconds
	}
}

// Inputs converts the plan section into normalized planning inputs together
// with any warnings raised along the way.
func (p PlanConfig) Inputs() (planning.Inputs, []string) {
	var warnings []string
	health, ok := planning.ParseHealthStatus(p.HealthStatus)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("unknown health status %q, defaulting to %s (max age %d)",
			p.HealthStatus, health, health.MaxAge()))
	}

	inputs, normalizeWarnings := planning.Inputs{
		CurrentAge:                p.CurrentAge,
		MonthlyExpense:            p.MonthlyExpense,
		MonthlyInvestment:         p.MonthlyInvestment,
		HealthStatus:              health,
		ExistingFixedIncomeCorpus: p.ExistingFixedIncomeCorpus,
		ExistingGrowthCorpus:      p.ExistingGrowthCorpus,
	}.Normalize()

	return inputs, append(warnings, normalizeWarnings...)
}

// OptimizerOptions builds the optimizer options from the optimizer and
// assumptions sections. Malformed combined pairs are skipped.
func (c *Configuration) OptimizerOptions() optimizer.Options {
	combined := make([][2]float64, 0, len(c.Optimizer.CombinedValues))
	for _, pair := range c.Optimizer.CombinedValues {
		if len(pair) == 2 {
			combined = append(combined, [2]float64{pair[0], pair[1]})
		}
	}

	return optimizer.Options{
		TargetAge:             c.Optimizer.TargetAge,
		StepUpValues:          c.Optimizer.StepUpValues,
		IncreaseValues:        c.Optimizer.IncreaseValues,
		CombinedValues:        combined,
		CacheCapacity:         c.Optimizer.CacheCapacity,
		CacheEvictionFraction: c.Optimizer.CacheEvictionFraction,
		Assumptions:           c.Assumptions,
	}
}

// AdvisoryChain builds the advisory provider chain. Providers with an
// invalid base URL are skipped.
func (c *Configuration) AdvisoryChain(logger *zap.Logger) *advisor.Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(c.Advisory.TimeoutSeconds) * time.Second

	var providers []advisor.Provider
	for _, p := range c.Advisory.Providers {
		if err := validation.ValidateProviderURL(p.Name, p.BaseURL); err != nil {
			logger.Warn("skipping advisory provider", zap.String("op", "config.AdvisoryChain"), zap.Error(err))
			continue
		}
		var apiKey string
		if p.APIKeyEnv != "" {
			apiKey = os.Getenv(p.APIKeyEnv)
		}
		maxRetries := constants.DefaultAdvisoryMaxRetries
		if p.MaxRetries != nil && *p.MaxRetries >= 0 {
			maxRetries = *p.MaxRetries
		}
		providers = append(providers, advisor.NewHTTPProvider(logger, advisor.HTTPConfig{
			Name:       p.Name,
			BaseURL:    p.BaseURL,
			APIKey:     apiKey,
			Timeout:    timeout,
			MaxRetries: maxRetries,
		}))
	}

	return advisor.NewChain(logger, advisor.NewScorer(c.Optimizer.TargetAge), timeout, providers...)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}

	inputs, inputWarnings := c.Plan.Inputs()
	warnings = append(warnings, inputWarnings...)

	if err := c.Assumptions.Validate(); err != nil {
		warnings = append(warnings, fmt.Sprintf("assumptions: %s", err))
	}
	if err := c.OptimizerOptions().Validate(); err != nil {
		warnings = append(warnings, fmt.Sprintf("optimizer: %s", err))
	}

	providers := make([]validation.ProviderConfig, 0, len(c.Advisory.Providers))
	for _, p := range c.Advisory.Providers {
		providers = append(providers, validation.ProviderConfig{Name: p.Name, BaseURL: p.BaseURL})
		if p.APIKeyEnv != "" && os.Getenv(p.APIKeyEnv) == "" {
			warnings = append(warnings, fmt.Sprintf("advisory provider '%s' expects an API key in %s, which is not set", p.Name, p.APIKeyEnv))
		}
	}

	validator := validation.ConfigValidator{
		Plan: validation.PlanConfig{
			CurrentAge: inputs.CurrentAge,
			MaxAge:     inputs.MaxAge(),
			CeilingAge: c.Assumptions.FICeilingAge,
			TargetAge:  c.Optimizer.TargetAge,
		},
		Scenarios: validation.ScenarioConfig{
			StepUpValues:   c.Optimizer.StepUpValues,
			IncreaseValues: c.Optimizer.IncreaseValues,
			CombinedValues: c.Optimizer.CombinedValues,
		},
		Providers: providers,
	}
	return append(warnings, validator.ValidateAll()...)
}
