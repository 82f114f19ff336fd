// Package format renders monetary amounts for explanations and tables.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount returns a whole-unit amount with thousands separators (e.g., "-1,234").
// Half values round away from zero.
func Amount(amount float64) string {
	return group(decimal.NewFromFloat(amount).Round(0).StringFixed(0))
}

// NumericCurrency returns an amount with two decimals and separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	return group(decimal.NewFromFloat(amount).StringFixed(2))
}

// RoundAmount rounds to whole units the same way Amount displays them.
func RoundAmount(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(0).InexactFloat64()
}

func group(formatted string) string {
	sign := ""
	if strings.HasPrefix(formatted, "-") {
		sign = "-"
		formatted = formatted[1:]
	}
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return sign + intPart + "." + parts[1]
	}
	return sign + intPart
}
