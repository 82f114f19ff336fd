package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() Report {
	baseline := 52
	return Report{
		Inputs: planning.Inputs{
			CurrentAge:        30,
			MonthlyExpense:    50000,
			MonthlyInvestment: 50000,
			HealthStatus:      planning.HealthGenerallyHealthy,
		},
		BaselineFIAge: &baseline,
		Breakdown: []planning.YearlyBreakdownRow{
			{Age: 30, ProjectedCorpus: 0, TargetWithdrawal: 62500, GrossWithdrawal: 71428.57, YearsRemaining: 50, Sustainable: false},
			{Age: 52, ProjectedCorpus: 123456789.5, TargetWithdrawal: 276000, GrossWithdrawal: 315428.57, YearsRemaining: 28, Sustainable: true},
		},
		Optimization: &optimization.Result{
			BaselineFIAge: &baseline,
			Solutions: []optimization.Solution{
				{StepUpPercent: 10, SipIncreasePercent: 0, NewMonthlySip: 50000, FIAge: 46, ImprovementYears: 6},
				{StepUpPercent: 0, SipIncreasePercent: 15, NewMonthlySip: 57500, FIAge: 50, ImprovementYears: 2},
			},
			RecommendedSolution: &optimization.Solution{StepUpPercent: 10, NewMonthlySip: 50000, FIAge: 46, ImprovementYears: 6},
			Recommendation: &optimization.Recommendation{
				RecommendedIndex: 0,
				Explanation:      "Step up every year.",
				Alternatives:     []string{"increase SIP by 15%: FI at 50 (2 years earlier)"},
				Difficulty:       optimization.DifficultyModerate,
				Source:           "local",
			},
		},
		Warnings: []string{"existing growth corpus cannot be negative, using 0"},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, sampleReport())
	out := buf.String()

	assert.Contains(t, out, "--- Plan for age 30 (generally_healthy, horizon 80) ---")
	assert.Contains(t, out, "Monthly expense 50,000 | Monthly investment 50,000")
	assert.Contains(t, out, "Baseline FI age: 52")
	assert.Contains(t, out, "Warning: existing growth corpus cannot be negative")
	assert.Contains(t, out, "Age | Corpus           | Target/month  | Gross/month   | Years left | Sustainable")
	assert.Contains(t, out, "123,456,790")
	assert.Contains(t, out, "--- Optimization ---")
	assert.Contains(t, out, "Recommended (Moderate, via local): Step up every year.")
	assert.Contains(t, out, "  Alternative: increase SIP by 15%")
	assert.Contains(t, out, "New monthly investment: 50,000.00")

	lines := strings.Split(out, "\n")
	var marked int
	for _, line := range lines {
		if strings.HasSuffix(line, " *") {
			marked++
			assert.Contains(t, line, "46")
		}
	}
	assert.Equal(t, 1, marked)
}

func TestPrettyFormatUnreachable(t *testing.T) {
	report := sampleReport()
	report.BaselineFIAge = nil
	report.Optimization = &optimization.Result{SkipOptimization: true, Message: "Already optimal"}

	var buf bytes.Buffer
	PrettyFormat(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Baseline FI age: not reachable")
	assert.Contains(t, out, "Already optimal")
	assert.NotContains(t, out, "Step-up | Increase")
}

func TestCsvFormat(t *testing.T) {
	out := CsvString(sampleReport())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, 7)
	assert.Equal(t, `"age","projected corpus","target withdrawal","gross withdrawal","years remaining","sustainable"`, lines[0])
	assert.Equal(t, `"30","0.00","62500.00","71428.57","50","false"`, lines[1])
	assert.Equal(t, `"52","123456789.50","276000.00","315428.57","28","true"`, lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, `"10","0","50000.00","46","6","true"`, lines[5])
	assert.Equal(t, `"0","15","57500.00","50","2","false"`, lines[6])
}

func TestCsvFormatWithoutOptimization(t *testing.T) {
	report := sampleReport()
	report.Optimization = nil

	lines := strings.Split(strings.TrimSpace(CsvString(report)), "\n")
	assert.Len(t, lines, 3)
}

func TestYamlFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YamlFormat(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 52, decoded["baselineFiAge"])

	inputs, ok := decoded["inputs"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "generally_healthy", inputs["healthStatus"])

	opt, ok := decoded["optimization"].(map[string]interface{})
	require.True(t, ok)
	rec, ok := opt["recommendation"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Moderate", rec["difficulty"])
}

func TestWrite(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"pretty", "--- Plan for age 30"},
		{"CSV", `"age","projected corpus"`},
		{"yaml", "baselineFiAge: 52"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.format, sampleReport()))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
