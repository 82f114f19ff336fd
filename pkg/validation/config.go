// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidatePlanHorizon checks that the plan leaves room to search and to
// withdraw. It returns warnings, never errors.
func ValidatePlanHorizon(currentAge, maxAge, ceilingAge int) []string {
	var warnings []string

	if currentAge <= 0 {
		return append(warnings, fmt.Sprintf("Current age must be positive, got %d", currentAge))
	}
	if currentAge >= maxAge {
		warnings = append(warnings, fmt.Sprintf("Current age %d is at or beyond the planning horizon of %d", currentAge, maxAge))
	}
	if currentAge > ceilingAge {
		warnings = append(warnings, fmt.Sprintf("Current age %d is past the FI age ceiling of %d - no FI age can be found", currentAge, ceilingAge))
	}

	return warnings
}

// ValidateProviderURL checks that an advisory base URL is absolute http(s).
func ValidateProviderURL(name, baseURL string) error {
	if strings.TrimSpace(baseURL) == "" {
		return fmt.Errorf("advisory provider '%s' has no baseURL", name)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("advisory provider '%s' has an invalid baseURL: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("advisory provider '%s' baseURL must use http or https, got %q", name, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("advisory provider '%s' baseURL has no host", name)
	}
	return nil
}

// ConfigValidator collects the configuration facts worth warning about
type ConfigValidator struct {
	Plan      PlanConfig
	Scenarios ScenarioConfig
	Providers []ProviderConfig
}

type PlanConfig struct {
	CurrentAge int
	MaxAge     int
	CeilingAge int
	TargetAge  int
}

type ScenarioConfig struct {
	StepUpValues   []float64
	IncreaseValues []float64
	CombinedValues [][]float64
}

type ProviderConfig struct {
	Name    string
	BaseURL string
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	warnings = append(warnings, ValidatePlanHorizon(cv.Plan.CurrentAge, cv.Plan.MaxAge, cv.Plan.CeilingAge)...)

	if cv.Plan.TargetAge > cv.Plan.CeilingAge {
		warnings = append(warnings, fmt.Sprintf("Optimization target age %d is above the FI age ceiling of %d",
			cv.Plan.TargetAge, cv.Plan.CeilingAge))
	}

	if len(cv.Scenarios.StepUpValues) == 0 && len(cv.Scenarios.IncreaseValues) == 0 && len(cv.Scenarios.CombinedValues) == 0 {
		warnings = append(warnings, "No optimization scenarios configured - optimize will never find an improvement")
	}
	for i, pair := range cv.Scenarios.CombinedValues {
		if len(pair) != 2 {
			warnings = append(warnings, fmt.Sprintf("Combined scenario %d must be a [stepUp, increase] pair, got %d values", i, len(pair)))
		}
	}

	seen := make(map[string]bool)
	for _, provider := range cv.Providers {
		if seen[provider.Name] {
			warnings = append(warnings, fmt.Sprintf("Advisory provider '%s' is listed more than once", provider.Name))
		}
		seen[provider.Name] = true
		if err := ValidateProviderURL(provider.Name, provider.BaseURL); err != nil {
			warnings = append(warnings, err.Error()+" - provider will be skipped")
		}
	}

	return warnings
}
