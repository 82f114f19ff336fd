package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/format"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
)

// ScorerName identifies recommendations produced locally.
const ScorerName = "local"

// Scorer is the local, always-available recommendation strategy.
type Scorer struct {
	targetAge int
}

// NewScorer returns a scorer for the given target age. Non-positive values
// use the default optimization target.
func NewScorer(targetAge int) *Scorer {
	if targetAge <= 0 {
		targetAge = constants.OptimizationTargetAge
	}
	return &Scorer{targetAge: targetAge}
}

// Name implements Provider.
func (s *Scorer) Name() string {
	return ScorerName
}

// Score weighs years saved against the behavioral change a solution asks for.
func Score(baselineFIAge int, sol optimization.Solution, targetAge int) float64 {
	score := constants.ScoreWeightYearsSaved*float64(baselineFIAge-sol.FIAge) -
		constants.ScoreWeightStepUp*sol.StepUpPercent -
		constants.ScoreWeightIncrease*sol.SipIncreasePercent
	if sol.FIAge <= targetAge {
		score += constants.ScoreTargetAgeBonus
	}
	return score
}

// Recommend implements Provider. It only fails when there is nothing to
// choose from; the context is not consulted.
func (s *Scorer) Recommend(_ context.Context, req Request) (*optimization.Recommendation, error) {
	if len(req.Solutions) == 0 {
		return nil, ErrNoSolutions
	}
	rec := s.Select(req)
	return &rec, nil
}

// Select picks the highest scoring solution. Ties go to the earliest entry.
func (s *Scorer) Select(req Request) optimization.Recommendation {
	targetAge := s.targetAge
	if req.Preferences.TargetAge > 0 {
		targetAge = req.Preferences.TargetAge
	}

	scores := make([]float64, len(req.Solutions))
	best := 0
	for i, sol := range req.Solutions {
		scores[i] = Score(req.BaselineFIAge, sol, targetAge)
		if scores[i] > scores[best] {
			best = i
		}
	}

	chosen := req.Solutions[best]
	return optimization.Recommendation{
		RecommendedIndex: best,
		Explanation:      explain(req.BaselineFIAge, chosen, targetAge),
		Alternatives:     alternatives(req.Solutions, scores, best),
		Difficulty:       optimization.ClassifyDifficulty(chosen.StepUpPercent, chosen.SipIncreasePercent),
		Source:           ScorerName,
	}
}

// alternatives summarizes the next-best solutions by score, excluding best.
func alternatives(solutions []optimization.Solution, scores []float64, best int) []string {
	order := make([]int, 0, len(solutions)-1)
	for i := range solutions {
		if i != best {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > constants.MaxAlternatives {
		order = order[:constants.MaxAlternatives]
	}

	out := make([]string, 0, len(order))
	for _, i := range order {
		out = append(out, solutions[i].Summary())
	}
	return out
}

func describeChange(sol optimization.Solution) string {
	var parts []string
	if sol.SipIncreasePercent > 0 {
		parts = append(parts, fmt.Sprintf("increasing your monthly investment by %g%% to %s",
			sol.SipIncreasePercent, format.Amount(sol.NewMonthlySip)))
	}
	if sol.StepUpPercent > 0 {
		parts = append(parts, fmt.Sprintf("stepping it up by %g%% every year", sol.StepUpPercent))
	}
	if len(parts) == 0 {
		return "keeping your current plan"
	}
	return strings.Join(parts, " and ")
}

func explain(baselineFIAge int, sol optimization.Solution, targetAge int) string {
	saved := baselineFIAge - sol.FIAge
	change := describeChange(sol)
	change = strings.ToUpper(change[:1]) + change[1:]

	if baselineFIAge >= constants.UnreachableBaselineAge {
		return fmt.Sprintf("Your current plan does not reach financial independence. %s gets you there at %d.",
			change, sol.FIAge)
	}
	if sol.FIAge <= targetAge {
		return fmt.Sprintf("%s reaches financial independence at %d, %d %s sooner, and meets your target age of %d.",
			change, sol.FIAge, saved, yearWord(saved), targetAge)
	}
	return fmt.Sprintf("%s reaches financial independence at %d, %d %s sooner. Reaching %d would take a larger change; this option balances effort against time saved.",
		change, sol.FIAge, saved, yearWord(saved), targetAge)
}

func yearWord(n int) string {
	if n == 1 {
		return "year"
	}
	return "years"
}
