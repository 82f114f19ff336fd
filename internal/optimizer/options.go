package optimizer

import (
	"fmt"

	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/finance"
)

// Options controls the scenario search.
type Options struct {
	TargetAge             int
	StepUpValues          []float64
	IncreaseValues        []float64
	CombinedValues        [][2]float64
	CacheCapacity         int
	CacheEvictionFraction float64
	Assumptions           finance.Assumptions
}

// DefaultOptions returns the stock scenario grid and rate model.
func DefaultOptions() Options {
	return Options{
		TargetAge:             constants.OptimizationTargetAge,
		StepUpValues:          append([]float64(nil), constants.StepUpTestValues...),
		IncreaseValues:        append([]float64(nil), constants.IncreaseTestValues...),
		CombinedValues:        append([][2]float64(nil), constants.CombinedTestValues...),
		CacheCapacity:         constants.DefaultCacheCapacity,
		CacheEvictionFraction: constants.CacheEvictionFraction,
		Assumptions:           finance.DefaultAssumptions(),
	}
}

// Normalize fills unset fields with defaults.
func (o *Options) Normalize() {
	defaults := DefaultOptions()
	if o.TargetAge <= 0 {
		o.TargetAge = defaults.TargetAge
	}
	if o.StepUpValues == nil {
		o.StepUpValues = defaults.StepUpValues
	}
	if o.IncreaseValues == nil {
		o.IncreaseValues = defaults.IncreaseValues
	}
	if o.CombinedValues == nil {
		o.CombinedValues = defaults.CombinedValues
	}
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = defaults.CacheCapacity
	}
	if o.CacheEvictionFraction <= 0 || o.CacheEvictionFraction > 1 {
		o.CacheEvictionFraction = defaults.CacheEvictionFraction
	}
	o.Assumptions.Normalize()
}

// Validate ensures the options describe a usable search.
func (o Options) Validate() error {
	for _, v := range o.StepUpValues {
		if v < 0 {
			return fmt.Errorf("step-up values must be non-negative, got %.2f", v)
		}
	}
	for _, v := range o.IncreaseValues {
		if v < 0 {
			return fmt.Errorf("increase values must be non-negative, got %.2f", v)
		}
	}
	for _, pair := range o.CombinedValues {
		if pair[0] < 0 || pair[1] < 0 {
			return fmt.Errorf("combined values must be non-negative, got (%.2f, %.2f)", pair[0], pair[1])
		}
	}
	if err := o.Assumptions.Validate(); err != nil {
		return fmt.Errorf("assumptions: %w", err)
	}
	return nil
}
