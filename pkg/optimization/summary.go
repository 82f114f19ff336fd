// Package optimization provides shared data structures for optimization results.
package optimization

import (
	"fmt"
	"strings"
)

// Solution captures one evaluated (step-up, increase) scenario.
type Solution struct {
	StepUpPercent      float64 `json:"stepUpPercent" yaml:"stepUpPercent"`
	SipIncreasePercent float64 `json:"sipIncreasePercent" yaml:"sipIncreasePercent"`
	NewMonthlySip      float64 `json:"newMonthlySip" yaml:"newMonthlySip"`
	FIAge              int     `json:"fiAge" yaml:"fiAge"`
	ImprovementYears   int     `json:"improvementYears" yaml:"improvementYears"`
}

// IsZeroChange reports whether the solution leaves the plan untouched.
func (s Solution) IsZeroChange() bool {
	return s.StepUpPercent == 0 && s.SipIncreasePercent == 0
}

// Summary is a short human-readable description of the scenario.
func (s Solution) Summary() string {
	var parts []string
	if s.SipIncreasePercent > 0 {
		parts = append(parts, fmt.Sprintf("increase SIP by %g%%", s.SipIncreasePercent))
	}
	if s.StepUpPercent > 0 {
		parts = append(parts, fmt.Sprintf("step up %g%% yearly", s.StepUpPercent))
	}
	if len(parts) == 0 {
		parts = append(parts, "keep current plan")
	}
	return fmt.Sprintf("%s: FI at %d (%d %s earlier)",
		strings.Join(parts, " and "), s.FIAge, s.ImprovementYears, pluralYears(s.ImprovementYears))
}

func pluralYears(n int) string {
	if n == 1 {
		return "year"
	}
	return "years"
}

// Difficulty classifies how much behavioral change a scenario asks for.
type Difficulty int

const (
	DifficultyUnknown Difficulty = iota
	DifficultyEasy
	DifficultyModerate
	DifficultyAggressive
)

var difficultyNames = map[Difficulty]string{
	DifficultyEasy:       "Easy",
	DifficultyModerate:   "Moderate",
	DifficultyAggressive: "Aggressive",
}

// String returns the display label.
func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return "Unknown"
}

// ParseDifficulty maps a label onto a Difficulty. Unrecognized labels return
// DifficultyUnknown and false.
func ParseDifficulty(value string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "easy":
		return DifficultyEasy, true
	case "moderate":
		return DifficultyModerate, true
	case "aggressive":
		return DifficultyAggressive, true
	default:
		return DifficultyUnknown, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, ok := ParseDifficulty(string(text))
	if !ok {
		return fmt.Errorf("unknown difficulty %q", string(text))
	}
	*d = parsed
	return nil
}

// ClassifyDifficulty applies the fixed thresholds shared with the remote
// advisory service.
func ClassifyDifficulty(stepUpPercent, increasePercent float64) Difficulty {
	switch {
	case (stepUpPercent <= 5 && increasePercent == 0) || (stepUpPercent == 0 && increasePercent <= 10):
		return DifficultyEasy
	case (stepUpPercent >= 10 && increasePercent >= 10) || stepUpPercent > 10 || increasePercent > 15:
		return DifficultyAggressive
	default:
		return DifficultyModerate
	}
}

// Recommendation is the advisory choice among Solutions.
type Recommendation struct {
	RecommendedIndex int        `json:"recommendedIndex" yaml:"recommendedIndex"`
	Explanation      string     `json:"explanation" yaml:"explanation"`
	Alternatives     []string   `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Difficulty       Difficulty `json:"difficulty" yaml:"difficulty"`
	Source           string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// Result is the terminal artifact of an optimization run.
type Result struct {
	BaselineFIAge       *int            `json:"baselineFiAge" yaml:"baselineFiAge"`
	Baseline            *Solution       `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	Solutions           []Solution      `json:"solutions" yaml:"solutions"`
	RecommendedSolution *Solution       `json:"recommendedSolution,omitempty" yaml:"recommendedSolution,omitempty"`
	Recommendation      *Recommendation `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	SkipOptimization    bool            `json:"skipOptimization" yaml:"skipOptimization"`
	Message             string          `json:"message,omitempty" yaml:"message,omitempty"`
	Error               string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// Empty indicates whether any improving scenario was produced.
func (r Result) Empty() bool {
	return len(r.Solutions) == 0
}
