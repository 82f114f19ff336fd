package finance

import (
	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/mathutil"
)

// WithdrawalOutcome summarizes a withdrawal simulation.
type WithdrawalOutcome struct {
	FinalBalance    float64
	TotalWithdrawn  float64
	MonthsWithdrawn int
}

// SimulateWithdrawals runs a monthly withdrawal stream against corpus. Each
// month the balance grows at the monthly equivalent of annualPercent and then
// the scheduled withdrawal, capped to what is available, is taken out. The
// schedule steps up by stepUpPercent every 12 months. The balance is never
// clamped, so its sign remains the sustainability signal.
func SimulateWithdrawals(corpus, monthlyWithdrawal, stepUpPercent, annualPercent float64, years int) WithdrawalOutcome {
	out := WithdrawalOutcome{FinalBalance: corpus}
	if years <= 0 || !mathutil.Finite(corpus) {
		return out
	}
	if monthlyWithdrawal < 0 {
		monthlyWithdrawal = 0
	}

	rate := mathutil.MonthlyRate(annualPercent)
	stepUp := 1 + mathutil.PercentToDecimal(stepUpPercent)
	scheduled := monthlyWithdrawal
	balance := corpus

	months := years * constants.MonthsPerYear
	for m := 1; m <= months; m++ {
		balance *= 1 + rate

		withdrawal := scheduled
		if withdrawal > balance {
			withdrawal = balance
		}
		if withdrawal > 0 {
			balance -= withdrawal
			out.TotalWithdrawn += withdrawal
			out.MonthsWithdrawn++
		}

		if m%constants.MonthsPerYear == 0 {
			scheduled *= stepUp
		}
	}

	out.FinalBalance = balance
	return out
}

// CheckSustainability reports whether corpus can fund monthlyWithdrawal,
// stepped up yearly by the inflation rate, for years at the retirement
// return while keeping the sustainability buffer of the starting corpus.
func (a Assumptions) CheckSustainability(corpus, monthlyWithdrawal float64, years int) bool {
	if corpus <= 0 || years <= 0 || !mathutil.Finite(corpus) {
		return false
	}
	outcome := SimulateWithdrawals(corpus, monthlyWithdrawal, a.Inflation, a.RetirementReturn, years)
	floor := corpus * mathutil.PercentToDecimal(a.SustainabilityBuffer)
	return outcome.FinalBalance >= floor
}
