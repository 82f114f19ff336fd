// Package solver locates the earliest sustainable financial independence age
// and builds the per-age breakdown of a plan.
package solver

import (
	"github.com/iwvelando/fi-forecast/internal/cache"
	"github.com/iwvelando/fi-forecast/internal/metrics"
	"github.com/iwvelando/fi-forecast/pkg/finance"
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"go.uber.org/zap"
)

// Params is one FI age query.
type Params struct {
	MonthlyInvestment   float64
	MonthlyExpense      float64
	CurrentAge          int
	MaxAge              int
	StepUpPercent       float64
	ExistingFixedIncome float64
	ExistingGrowth      float64
}

// ParamsFromInputs builds a query from planning inputs with the given
// investment and step-up.
func ParamsFromInputs(in planning.Inputs, monthlyInvestment, stepUpPercent float64) Params {
	return Params{
		MonthlyInvestment:   monthlyInvestment,
		MonthlyExpense:      in.MonthlyExpense,
		CurrentAge:          in.CurrentAge,
		MaxAge:              in.MaxAge(),
		StepUpPercent:       stepUpPercent,
		ExistingFixedIncome: in.ExistingFixedIncomeCorpus,
		ExistingGrowth:      in.ExistingGrowthCorpus,
	}
}

func (p Params) valid() bool {
	return p.CurrentAge > 0 && p.MaxAge > p.CurrentAge && p.MonthlyExpense > 0 && p.MonthlyInvestment > 0
}

// Solver evaluates FI ages. A Solver is safe for concurrent use when its
// cache is (the cache package is).
type Solver struct {
	logger      *zap.Logger
	assumptions finance.Assumptions
	cache       *cache.Cache
}

// New constructs a Solver. A nil cache disables memoization.
func New(logger *zap.Logger, assumptions finance.Assumptions, c *cache.Cache) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	assumptions.Normalize()
	return &Solver{logger: logger, assumptions: assumptions, cache: c}
}

// Assumptions returns the rate model in use.
func (s *Solver) Assumptions() finance.Assumptions {
	return s.assumptions
}

// searchCeiling is the oldest age the search may return for p.
func (s *Solver) searchCeiling(p Params) int {
	if p.MaxAge < s.assumptions.FICeilingAge {
		return p.MaxAge
	}
	return s.assumptions.FICeilingAge
}

// FIAge binary-searches [CurrentAge, min(FICeilingAge, MaxAge)] for the
// earliest sustainable age. It relies on sustainability being monotone
// non-decreasing in age; ScanFIAge is the exhaustive reference. Nil means FI
// is not reachable within the ceiling or the query is invalid.
func (s *Solver) FIAge(p Params) *int {
	if !p.valid() {
		return nil
	}

	low := p.CurrentAge
	high := s.searchCeiling(p)
	var found *int

	for iterations := 0; low <= high && iterations < s.assumptions.MaxSearchIterations; iterations++ {
		mid := low + (high-low)/2
		if s.Sustainable(p, mid) {
			age := mid
			found = &age
			high = mid - 1
		} else {
			low = mid + 1
		}
	}

	return found
}

// ScanFIAge checks every age in the search range in order and returns the
// first sustainable one.
func (s *Solver) ScanFIAge(p Params) *int {
	if !p.valid() {
		return nil
	}
	for age := p.CurrentAge; age <= s.searchCeiling(p); age++ {
		if s.Sustainable(p, age) {
			found := age
			return &found
		}
	}
	return nil
}

// Sustainable reports whether declaring FI at age keeps the corpus above the
// sustainability buffer until MaxAge.
func (s *Solver) Sustainable(p Params, age int) bool {
	metrics.SolverProbes.Inc()

	yearsElapsed := age - p.CurrentAge
	yearsRemaining := p.MaxAge - age
	if yearsElapsed < 0 || yearsRemaining <= 0 {
		return false
	}

	corpus := s.CorpusAt(p, yearsElapsed)
	gross := s.assumptions.GrossWithdrawal(s.assumptions.TargetMonthlyWithdrawal(p.MonthlyExpense, yearsElapsed))
	return s.assumptions.CheckSustainability(corpus, gross, yearsRemaining)
}

// CorpusAt is the total corpus after years of contributions plus the grown
// existing assets.
func (s *Solver) CorpusAt(p Params, years int) float64 {
	return s.projectedContributions(p.MonthlyInvestment, years, p.StepUpPercent) +
		s.assumptions.GrowExisting(p.ExistingFixedIncome, p.ExistingGrowth, years)
}

func (s *Solver) projectedContributions(monthly float64, years int, stepUp float64) float64 {
	compute := func() float64 {
		return s.assumptions.ProjectCorpus(monthly, years, stepUp).Value
	}
	if s.cache == nil {
		return compute()
	}
	return s.cache.GetOrCompute(cache.Key{MonthlyInvestment: monthly, Years: years, StepUpPercent: stepUp}, compute)
}
