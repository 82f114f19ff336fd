// Package output provides utilities for formatting and displaying projection results.
package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/fi-forecast/pkg/format"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Report is everything a command prints for one plan.
type Report struct {
	Inputs        planning.Inputs               `yaml:"inputs"`
	BaselineFIAge *int                          `yaml:"baselineFiAge"`
	Breakdown     []planning.YearlyBreakdownRow `yaml:"breakdown"`
	Optimization  *optimization.Result          `yaml:"optimization,omitempty"`
	Warnings      []string                      `yaml:"warnings,omitempty"`
}

func ageLabel(age *int) string {
	if age == nil {
		return "not reachable"
	}
	return fmt.Sprintf("%d", *age)
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, report Report) {
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "--- Plan for age %d (%s, horizon %d) ---\n",
		report.Inputs.CurrentAge, report.Inputs.HealthStatus, report.Inputs.MaxAge())
	_, _ = p.Fprintf(w, "Monthly expense %.0f | Monthly investment %.0f\n",
		report.Inputs.MonthlyExpense, report.Inputs.MonthlyInvestment)
	fmt.Fprintf(w, "Baseline FI age: %s\n", ageLabel(report.BaselineFIAge))
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}

	if len(report.Breakdown) > 0 {
		fmt.Fprintf(w, "\nAge | Corpus           | Target/month  | Gross/month   | Years left | Sustainable\n")
		fmt.Fprintf(w, "___ | ________________ | _____________ | _____________ | __________ | ___________\n")
		for _, row := range report.Breakdown {
			_, _ = p.Fprintf(w, "%3d | %16.0f | %13.0f | %13.0f | %10d | %s\n",
				row.Age, row.ProjectedCorpus, row.TargetWithdrawal, row.GrossWithdrawal, row.YearsRemaining, yesNo(row.Sustainable))
		}
	}

	if report.Optimization != nil {
		prettyOptimization(w, p, *report.Optimization)
	}
}

func prettyOptimization(w io.Writer, p *message.Printer, result optimization.Result) {
	fmt.Fprintf(w, "\n--- Optimization ---\n")
	if result.Message != "" {
		fmt.Fprintf(w, "%s\n", result.Message)
	}
	if result.Error != "" {
		fmt.Fprintf(w, "%s\n", result.Error)
	}
	if result.SkipOptimization || len(result.Solutions) == 0 {
		return
	}

	fmt.Fprintf(w, "Step-up | Increase | Monthly SIP   | FI age | Years earlier\n")
	fmt.Fprintf(w, "_______ | ________ | _____________ | ______ | _____________\n")
	for i, sol := range result.Solutions {
		marker := ""
		if result.Recommendation != nil && result.Recommendation.RecommendedIndex == i {
			marker = " *"
		}
		_, _ = p.Fprintf(w, "%6.0f%% | %7.0f%% | %13.0f | %6d | %13d%s\n",
			sol.StepUpPercent, sol.SipIncreasePercent, sol.NewMonthlySip, sol.FIAge, sol.ImprovementYears, marker)
	}

	if rec := result.Recommendation; rec != nil {
		fmt.Fprintf(w, "\nRecommended (%s, via %s): %s\n", rec.Difficulty, rec.Source, rec.Explanation)
		if sol := result.RecommendedSolution; sol != nil {
			fmt.Fprintf(w, "New monthly investment: %s\n", format.NumericCurrency(sol.NewMonthlySip))
		}
		for _, alt := range rec.Alternatives {
			fmt.Fprintf(w, "  Alternative: %s\n", alt)
		}
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// CsvFormat writes the breakdown and, when present, the optimization
// scenarios as comma-separated value sections.
func CsvFormat(w io.Writer, report Report) {
	fmt.Fprintf(w, `"age","projected corpus","target withdrawal","gross withdrawal","years remaining","sustainable"`+"\n")
	for _, row := range report.Breakdown {
		fmt.Fprintf(w, `"%d","%.2f","%.2f","%.2f","%d","%t"`+"\n",
			row.Age, row.ProjectedCorpus, row.TargetWithdrawal, row.GrossWithdrawal, row.YearsRemaining, row.Sustainable)
	}

	if report.Optimization == nil || len(report.Optimization.Solutions) == 0 {
		return
	}
	fmt.Fprintf(w, "\n"+`"step up percent","sip increase percent","new monthly sip","fi age","improvement years","recommended"`+"\n")
	for i, sol := range report.Optimization.Solutions {
		recommended := report.Optimization.Recommendation != nil && report.Optimization.Recommendation.RecommendedIndex == i
		fmt.Fprintf(w, `"%g","%g","%.2f","%d","%d","%t"`+"\n",
			sol.StepUpPercent, sol.SipIncreasePercent, sol.NewMonthlySip, sol.FIAge, sol.ImprovementYears, recommended)
	}
}

// CsvString returns CsvFormat output as a string.
func CsvString(report Report) string {
	var buf bytes.Buffer
	CsvFormat(&buf, report)
	return buf.String()
}

// YamlFormat writes the report as a YAML document.
func YamlFormat(w io.Writer, report Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// Write dispatches on a validated output format name.
func Write(w io.Writer, format string, report Report) error {
	switch strings.ToLower(format) {
	case "csv":
		CsvFormat(w, report)
	case "yaml":
		return YamlFormat(w, report)
	default:
		PrettyFormat(w, report)
	}
	return nil
}
