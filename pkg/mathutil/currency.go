// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/fi-forecast/pkg/constants"
)

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// PercentToDecimal converts a percentage such as 12 into 0.12.
func PercentToDecimal(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * PercentToDecimal(percentage)
}

// MonthlyRate returns the monthly rate that compounds to the given annual
// percentage over twelve months: (1+annual)^(1/12) - 1.
func MonthlyRate(annualPercent float64) float64 {
	base := 1 + PercentToDecimal(annualPercent)
	if base <= 0 {
		return 0
	}
	return math.Pow(base, 1.0/constants.MonthsPerYear) - 1
}

// Compound grows value annually at annualPercent for the given number of years.
// Non-positive horizons return the value unchanged.
func Compound(value, annualPercent float64, years int) float64 {
	if years <= 0 {
		return value
	}
	return value * math.Pow(1+PercentToDecimal(annualPercent), float64(years))
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
