// Package finance implements the deterministic accumulation and withdrawal
// simulators behind the FI age search.
package finance

import (
	"math"

	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/mathutil"
)

// Projection is the outcome of a monthly contribution stream.
type Projection struct {
	Value    float64
	Invested float64
}

// sipLeg is a single-rate leg of a contribution stream.
type sipLeg struct {
	value       float64
	invested    float64
	nextMonthly float64
}

// projectLeg contributes at the start of each month and compounds monthly at
// the monthly equivalent of annualPercent. The contribution steps up by
// stepUpPercent at every 12-month boundary except the last one; nextMonthly
// is the contribution level for the month after the leg.
func projectLeg(monthly float64, years int, annualPercent, stepUpPercent float64) sipLeg {
	months := years * constants.MonthsPerYear
	rate := mathutil.MonthlyRate(annualPercent)
	stepUp := 1 + mathutil.PercentToDecimal(stepUpPercent)

	leg := sipLeg{nextMonthly: monthly}
	current := monthly
	for m := 1; m <= months; m++ {
		leg.value = (leg.value + current) * (1 + rate)
		leg.invested += current
		if m%constants.MonthsPerYear == 0 && m < months {
			current *= stepUp
		}
	}
	if months > 0 {
		leg.nextMonthly = monthly * math.Pow(stepUp, float64(years))
	}
	return leg
}

// ProjectCorpus projects a monthly contribution over years under the
// two-regime return schedule. Horizons shorter than RegimeSwitchYears use the
// short-term rate throughout. Longer horizons accumulate the first
// RegimeSwitchYears at the short-term rate, then contribute the stepped-up
// level at the long-term rate while the already accumulated balance is
// compounded forward at the long-term rate.
func (a Assumptions) ProjectCorpus(monthly float64, years int, stepUpPercent float64) Projection {
	if years <= 0 || monthly <= 0 || !mathutil.Finite(monthly) {
		return Projection{}
	}
	if stepUpPercent < 0 {
		stepUpPercent = 0
	}

	switchYears := a.RegimeSwitchYears
	if switchYears <= 0 {
		switchYears = constants.RegimeSwitchYears
	}

	if years < switchYears {
		leg := projectLeg(monthly, years, a.ShortTermReturn, stepUpPercent)
		return Projection{Value: leg.value, Invested: leg.invested}
	}

	early := projectLeg(monthly, switchYears, a.ShortTermReturn, stepUpPercent)
	remaining := years - switchYears
	late := projectLeg(early.nextMonthly, remaining, a.LongTermReturn, stepUpPercent)

	return Projection{
		Value:    mathutil.Compound(early.value, a.LongTermReturn, remaining) + late.value,
		Invested: early.invested + late.invested,
	}
}

// GrowExisting compounds the existing fixed-income and growth-asset lump sums
// annually at their own rates. Negative balances count as zero.
func (a Assumptions) GrowExisting(fixedIncome, growth float64, years int) float64 {
	fixedIncome = math.Max(fixedIncome, 0)
	growth = math.Max(growth, 0)
	return mathutil.Compound(fixedIncome, a.FixedIncomeReturn, years) +
		mathutil.Compound(growth, a.GrowthAssetReturn, years)
}

// TargetMonthlyWithdrawal inflates today's monthly expense over
// yearsElapsed and applies the lifestyle buffer.
func (a Assumptions) TargetMonthlyWithdrawal(monthlyExpense float64, yearsElapsed int) float64 {
	if monthlyExpense <= 0 {
		return 0
	}
	inflated := mathutil.Compound(monthlyExpense, a.Inflation, yearsElapsed)
	return inflated * (1 + mathutil.PercentToDecimal(a.LifestyleBuffer))
}

// GrossWithdrawal grosses a post-tax withdrawal up by the flat LTCG rate.
func (a Assumptions) GrossWithdrawal(target float64) float64 {
	keep := 1 - mathutil.PercentToDecimal(a.LTCGTaxRate)
	if keep <= 0 {
		return 0
	}
	return target / keep
}
