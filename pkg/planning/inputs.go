// Package planning defines the inputs and per-age outputs of a financial
// independence projection.
package planning

import (
	"fmt"
	"strings"

	"github.com/iwvelando/fi-forecast/pkg/constants"
)

// HealthStatus selects the planning horizon (end-of-life age).
type HealthStatus int

const (
	// HealthUnknown is never produced by ParseHealthStatus; it marks a zero value.
	HealthUnknown HealthStatus = iota
	HealthNeedsImprovement
	HealthGenerallyHealthy
	HealthVeryHealthy
)

// DefaultHealthStatus is used for unrecognized health values.
const DefaultHealthStatus = HealthGenerallyHealthy

var healthNames = map[HealthStatus]string{
	HealthNeedsImprovement: "needs_improvement",
	HealthGenerallyHealthy: "generally_healthy",
	HealthVeryHealthy:      "very_healthy",
}

// String returns the canonical snake_case identifier.
func (h HealthStatus) String() string {
	if name, ok := healthNames[h]; ok {
		return name
	}
	return healthNames[DefaultHealthStatus]
}

// MaxAge maps a health status to its end-of-life age. Unknown values map to
// the default status.
func (h HealthStatus) MaxAge() int {
	switch h {
	case HealthNeedsImprovement:
		return constants.MaxAgeNeedsImprovement
	case HealthVeryHealthy:
		return constants.MaxAgeVeryHealthy
	default:
		return constants.MaxAgeGenerallyHealthy
	}
}

// ParseHealthStatus maps free-form text onto a HealthStatus. The boolean is
// false when the value was not recognized and DefaultHealthStatus was used.
func ParseHealthStatus(value string) (HealthStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case "needs_improvement":
		return HealthNeedsImprovement, true
	case "generally_healthy":
		return HealthGenerallyHealthy, true
	case "very_healthy":
		return HealthVeryHealthy, true
	default:
		return DefaultHealthStatus, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (h HealthStatus) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values decode to
// DefaultHealthStatus rather than failing.
func (h *HealthStatus) UnmarshalText(text []byte) error {
	parsed, _ := ParseHealthStatus(string(text))
	*h = parsed
	return nil
}

// Inputs is the record a projection run starts from. It is treated as
// immutable once a run has started.
type Inputs struct {
	CurrentAge                int          `json:"currentAge" yaml:"currentAge"`
	MonthlyExpense            float64      `json:"monthlyExpense" yaml:"monthlyExpense"`
	MonthlyInvestment         float64      `json:"monthlyInvestment" yaml:"monthlyInvestment"`
	HealthStatus              HealthStatus `json:"healthStatus" yaml:"healthStatus"`
	ExistingFixedIncomeCorpus float64      `json:"existingFixedIncomeCorpus" yaml:"existingFixedIncomeCorpus"`
	ExistingGrowthCorpus      float64      `json:"existingGrowthCorpus" yaml:"existingGrowthCorpus"`
}

// MaxAge is the end-of-life age implied by the health status.
func (in Inputs) MaxAge() int {
	return in.HealthStatus.MaxAge()
}

// Normalize returns a defensive copy of the inputs together with warnings
// describing any value that was defaulted or clamped. Callers get a usable
// record back in every case; Valid reports whether a projection is possible.
func (in Inputs) Normalize() (Inputs, []string) {
	out := in
	var warnings []string

	if _, ok := healthNames[out.HealthStatus]; !ok {
		warnings = append(warnings, fmt.Sprintf("unknown health status, defaulting to %s (max age %d)",
			DefaultHealthStatus, DefaultHealthStatus.MaxAge()))
		out.HealthStatus = DefaultHealthStatus
	}
	if out.CurrentAge <= 0 {
		warnings = append(warnings, fmt.Sprintf("current age must be positive, got %d", out.CurrentAge))
	}
	if out.MonthlyExpense <= 0 {
		warnings = append(warnings, fmt.Sprintf("monthly expense must be positive, got %.2f", out.MonthlyExpense))
	}
	if out.MonthlyInvestment <= 0 {
		warnings = append(warnings, fmt.Sprintf("monthly investment must be positive, got %.2f", out.MonthlyInvestment))
	}
	if out.ExistingFixedIncomeCorpus < 0 {
		warnings = append(warnings, "existing fixed income corpus cannot be negative, using 0")
		out.ExistingFixedIncomeCorpus = 0
	}
	if out.ExistingGrowthCorpus < 0 {
		warnings = append(warnings, "existing growth corpus cannot be negative, using 0")
		out.ExistingGrowthCorpus = 0
	}

	return out, warnings
}

// Valid reports whether the inputs can produce a projection.
func (in Inputs) Valid() bool {
	return in.CurrentAge > 0 &&
		in.MonthlyExpense > 0 &&
		in.MonthlyInvestment > 0 &&
		in.CurrentAge < in.MaxAge()
}

// YearlyBreakdownRow describes the plan if financial independence were
// declared at Age.
type YearlyBreakdownRow struct {
	Age              int     `json:"age" yaml:"age"`
	ProjectedCorpus  float64 `json:"projectedCorpus" yaml:"projectedCorpus"`
	TargetWithdrawal float64 `json:"targetWithdrawal" yaml:"targetWithdrawal"`
	GrossWithdrawal  float64 `json:"grossWithdrawal" yaml:"grossWithdrawal"`
	YearsRemaining   int     `json:"yearsRemaining" yaml:"yearsRemaining"`
	Sustainable      bool    `json:"sustainable" yaml:"sustainable"`
}
