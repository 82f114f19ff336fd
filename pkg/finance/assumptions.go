package finance

import (
	"fmt"

	"github.com/iwvelando/fi-forecast/pkg/constants"
)

// Assumptions holds the rate model used by every projection. All rates are
// annual percentages (12 means 12%).
type Assumptions struct {
	ShortTermReturn      float64 `json:"shortTermReturn" yaml:"shortTermReturn" mapstructure:"shortTermReturn"`
	LongTermReturn       float64 `json:"longTermReturn" yaml:"longTermReturn" mapstructure:"longTermReturn"`
	RegimeSwitchYears    int     `json:"regimeSwitchYears" yaml:"regimeSwitchYears" mapstructure:"regimeSwitchYears"`
	FixedIncomeReturn    float64 `json:"fixedIncomeReturn" yaml:"fixedIncomeReturn" mapstructure:"fixedIncomeReturn"`
	GrowthAssetReturn    float64 `json:"growthAssetReturn" yaml:"growthAssetReturn" mapstructure:"growthAssetReturn"`
	RetirementReturn     float64 `json:"retirementReturn" yaml:"retirementReturn" mapstructure:"retirementReturn"`
	Inflation            float64 `json:"inflation" yaml:"inflation" mapstructure:"inflation"`
	LifestyleBuffer      float64 `json:"lifestyleBuffer" yaml:"lifestyleBuffer" mapstructure:"lifestyleBuffer"`
	LTCGTaxRate          float64 `json:"ltcgTaxRate" yaml:"ltcgTaxRate" mapstructure:"ltcgTaxRate"`
	SustainabilityBuffer float64 `json:"sustainabilityBuffer" yaml:"sustainabilityBuffer" mapstructure:"sustainabilityBuffer"`
	FICeilingAge         int     `json:"fiCeilingAge" yaml:"fiCeilingAge" mapstructure:"fiCeilingAge"`
	MaxSearchIterations  int     `json:"maxSearchIterations" yaml:"maxSearchIterations" mapstructure:"maxSearchIterations"`
}

// DefaultAssumptions returns the stock rate model.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ShortTermReturn:      constants.ShortTermReturnPercent,
		LongTermReturn:       constants.LongTermReturnPercent,
		RegimeSwitchYears:    constants.RegimeSwitchYears,
		FixedIncomeReturn:    constants.FixedIncomeReturnPercent,
		GrowthAssetReturn:    constants.GrowthAssetReturnPercent,
		RetirementReturn:     constants.RetirementReturnPercent,
		Inflation:            constants.InflationPercent,
		LifestyleBuffer:      constants.LifestyleBufferPercent,
		LTCGTaxRate:          constants.LTCGTaxPercent,
		SustainabilityBuffer: constants.SustainabilityBufferPercent,
		FICeilingAge:         constants.FICeilingAge,
		MaxSearchIterations:  constants.MaxSearchIterations,
	}
}

// Normalize fills zero-valued structural fields with their defaults. Rates of
// zero are legitimate and are left alone.
func (a *Assumptions) Normalize() {
	if a.RegimeSwitchYears <= 0 {
		a.RegimeSwitchYears = constants.RegimeSwitchYears
	}
	if a.FICeilingAge <= 0 {
		a.FICeilingAge = constants.FICeilingAge
	}
	if a.MaxSearchIterations <= 0 {
		a.MaxSearchIterations = constants.MaxSearchIterations
	}
}

// Validate returns an error when a rate would make the model meaningless.
func (a Assumptions) Validate() error {
	rates := map[string]float64{
		"shortTermReturn":   a.ShortTermReturn,
		"longTermReturn":    a.LongTermReturn,
		"fixedIncomeReturn": a.FixedIncomeReturn,
		"growthAssetReturn": a.GrowthAssetReturn,
		"retirementReturn":  a.RetirementReturn,
		"inflation":         a.Inflation,
	}
	for name, rate := range rates {
		if rate <= -100 {
			return fmt.Errorf("%s must be greater than -100%%, got %.2f%%", name, rate)
		}
	}
	if a.LTCGTaxRate < 0 || a.LTCGTaxRate >= 100 {
		return fmt.Errorf("ltcgTaxRate must be in [0, 100), got %.2f%%", a.LTCGTaxRate)
	}
	if a.LifestyleBuffer < 0 {
		return fmt.Errorf("lifestyleBuffer cannot be negative, got %.2f%%", a.LifestyleBuffer)
	}
	if a.SustainabilityBuffer < 0 || a.SustainabilityBuffer > 100 {
		return fmt.Errorf("sustainabilityBuffer must be in [0, 100], got %.2f%%", a.SustainabilityBuffer)
	}
	return nil
}
