package optimization

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDifficulty(t *testing.T) {
	tests := []struct {
		stepUp   float64
		increase float64
		want     Difficulty
	}{
		{5, 0, DifficultyEasy},
		{0, 10, DifficultyEasy},
		{0, 0, DifficultyEasy},
		{12, 12, DifficultyAggressive},
		{10, 10, DifficultyAggressive},
		{15, 0, DifficultyAggressive},
		{0, 20, DifficultyAggressive},
		{7, 7, DifficultyModerate},
		{7, 0, DifficultyModerate},
		{10, 0, DifficultyModerate},
		{0, 15, DifficultyModerate},
		{5, 10, DifficultyModerate},
	}

	for _, tt := range tests {
		got := ClassifyDifficulty(tt.stepUp, tt.increase)
		assert.Equalf(t, tt.want, got, "ClassifyDifficulty(%v, %v)", tt.stepUp, tt.increase)
	}
}

func TestDifficultyText(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyModerate, DifficultyAggressive} {
		parsed, ok := ParseDifficulty(d.String())
		assert.True(t, ok)
		assert.Equal(t, d, parsed)
	}

	_, ok := ParseDifficulty("heroic")
	assert.False(t, ok)

	var rec Recommendation
	err := json.Unmarshal([]byte(`{"recommendedIndex":1,"difficulty":"heroic"}`), &rec)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"recommendedIndex":1,"difficulty":"moderate"}`), &rec))
	assert.Equal(t, DifficultyModerate, rec.Difficulty)
}

func TestSolutionSummary(t *testing.T) {
	s := Solution{StepUpPercent: 10, FIAge: 48, ImprovementYears: 3}
	assert.Equal(t, "step up 10% yearly: FI at 48 (3 years earlier)", s.Summary())

	s = Solution{StepUpPercent: 5, SipIncreasePercent: 20, FIAge: 50, ImprovementYears: 1}
	assert.Equal(t, "increase SIP by 20% and step up 5% yearly: FI at 50 (1 year earlier)", s.Summary())

	assert.True(t, Solution{FIAge: 50}.IsZeroChange())
	assert.False(t, s.IsZeroChange())
}
