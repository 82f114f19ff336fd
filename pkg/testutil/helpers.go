// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/iwvelando/fi-forecast/pkg/planning"
)

// ReferenceInputs is the plan most tests start from: age 30, 50,000 monthly
// expense and investment, generally healthy. Its baseline FI age is 52.
func ReferenceInputs() planning.Inputs {
	return planning.Inputs{
		CurrentAge:        30,
		MonthlyExpense:    50000,
		MonthlyInvestment: 50000,
		HealthStatus:      planning.HealthGenerallyHealthy,
	}
}

// FindSolution finds the scenario with the given step-up and increase.
// Returns a pointer into solutions if found, nil otherwise.
func FindSolution(solutions []optimization.Solution, stepUpPercent, increasePercent float64) *optimization.Solution {
	for i := range solutions {
		if solutions[i].StepUpPercent == stepUpPercent && solutions[i].SipIncreasePercent == increasePercent {
			return &solutions[i]
		}
	}
	return nil
}
