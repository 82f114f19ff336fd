package advisor

import (
	"context"
	"testing"

	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sol(stepUp, increase float64, fiAge, baseline int) optimization.Solution {
	return optimization.Solution{
		StepUpPercent:      stepUp,
		SipIncreasePercent: increase,
		NewMonthlySip:      50000 * (1 + increase/100),
		FIAge:              fiAge,
		ImprovementYears:   baseline - fiAge,
	}
}

// referenceSolutions is the sorted candidate list for a 30 year old
// investing 50,000 a month against 50,000 of expenses (baseline 52).
func referenceSolutions() []optimization.Solution {
	return []optimization.Solution{
		sol(15, 0, 44, 52),
		sol(10, 20, 45, 52),
		sol(12, 0, 45, 52),
		sol(10, 0, 46, 52),
		sol(10, 10, 46, 52),
		sol(5, 20, 47, 52),
		sol(7, 15, 47, 52),
		sol(0, 50, 48, 52),
		sol(5, 10, 48, 52),
		sol(7, 0, 48, 52),
		sol(0, 30, 49, 52),
		sol(5, 0, 49, 52),
		sol(0, 20, 50, 52),
		sol(0, 25, 50, 52),
		sol(0, 10, 51, 52),
		sol(0, 15, 51, 52),
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		sol  optimization.Solution
		want float64
	}{
		{"step up reaching target", sol(12, 0, 45, 52), 19},
		{"step up beyond target", sol(10, 0, 46, 52), 0},
		{"large increase", sol(0, 50, 48, 52), -80},
		{"combined at target", sol(10, 20, 45, 52), -15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(52, tt.sol, 45), 1e-9)
		})
	}
}

func TestScorerSelectReferenceScenario(t *testing.T) {
	s := NewScorer(45)
	req := Request{BaselineFIAge: 52, Solutions: referenceSolutions()}

	rec := s.Select(req)

	assert.Equal(t, 2, rec.RecommendedIndex)
	assert.Equal(t, optimization.DifficultyAggressive, rec.Difficulty)
	assert.Equal(t, ScorerName, rec.Source)
	assert.Contains(t, rec.Explanation, "stepping it up by 12% every year")
	assert.Contains(t, rec.Explanation, "meets your target age of 45")
	assert.Equal(t, []string{
		"step up 15% yearly: FI at 44 (8 years earlier)",
		"step up 10% yearly: FI at 46 (6 years earlier)",
	}, rec.Alternatives)
}

func TestScorerSelectsMaximumScore(t *testing.T) {
	s := NewScorer(45)
	req := Request{BaselineFIAge: 52, Solutions: referenceSolutions()}

	rec := s.Select(req)
	best := Score(52, req.Solutions[rec.RecommendedIndex], 45)
	for i, candidate := range req.Solutions {
		assert.GreaterOrEqual(t, best, Score(52, candidate, 45), "candidate %d outscored the recommendation", i)
	}
}

func TestScorerTieGoesToFirst(t *testing.T) {
	s := NewScorer(45)
	// Both score 0: 5*6 - 3*10 and 5*3 - 3*5.
	req := Request{
		BaselineFIAge: 52,
		Solutions: []optimization.Solution{
			sol(10, 0, 46, 52),
			sol(5, 0, 49, 52),
		},
	}

	rec := s.Select(req)
	assert.Equal(t, 0, rec.RecommendedIndex)

	req.Solutions[0], req.Solutions[1] = req.Solutions[1], req.Solutions[0]
	rec = s.Select(req)
	assert.Equal(t, 0, rec.RecommendedIndex)
	assert.Equal(t, 5.0, req.Solutions[rec.RecommendedIndex].StepUpPercent)
}

func TestScorerExplanationWithoutTarget(t *testing.T) {
	s := NewScorer(45)
	req := Request{
		BaselineFIAge: 55,
		Solutions:     []optimization.Solution{sol(0, 20, 50, 55)},
	}

	rec := s.Select(req)

	assert.Equal(t, 0, rec.RecommendedIndex)
	assert.Empty(t, rec.Alternatives)
	assert.Contains(t, rec.Explanation, "Increasing your monthly investment by 20% to 60,000")
	assert.Contains(t, rec.Explanation, "5 years sooner")
	assert.Contains(t, rec.Explanation, "Reaching 45 would take a larger change")
	assert.Equal(t, optimization.DifficultyAggressive, rec.Difficulty)
}

func TestScorerExplanationUnreachableBaseline(t *testing.T) {
	s := NewScorer(45)
	req := Request{
		BaselineFIAge: 100,
		Solutions:     []optimization.Solution{sol(5, 0, 58, 100)},
	}

	rec := s.Select(req)
	assert.Contains(t, rec.Explanation, "does not reach financial independence")
	assert.Contains(t, rec.Explanation, "gets you there at 58")
	assert.Equal(t, optimization.DifficultyEasy, rec.Difficulty)
}

func TestScorerPreferencesOverrideTarget(t *testing.T) {
	s := NewScorer(45)
	req := Request{
		BaselineFIAge: 52,
		Solutions:     []optimization.Solution{sol(10, 0, 46, 52), sol(5, 0, 49, 52)},
		Preferences:   Preferences{TargetAge: 50},
	}

	rec := s.Select(req)
	assert.Equal(t, 0, rec.RecommendedIndex)
	assert.Contains(t, rec.Explanation, "meets your target age of 50")
}

func TestScorerRecommendRequiresSolutions(t *testing.T) {
	s := NewScorer(0)

	_, err := s.Recommend(context.Background(), Request{BaselineFIAge: 52})
	require.ErrorIs(t, err, ErrNoSolutions)

	rec, err := s.Recommend(context.Background(), Request{BaselineFIAge: 52, Solutions: referenceSolutions()})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.RecommendedIndex)
}
