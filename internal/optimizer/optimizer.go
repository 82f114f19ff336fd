// Package optimizer searches contribution changes that bring the FI age
// forward and picks one to recommend.
package optimizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/fi-forecast/internal/advisor"
	"github.com/iwvelando/fi-forecast/internal/cache"
	"github.com/iwvelando/fi-forecast/internal/metrics"
	"github.com/iwvelando/fi-forecast/internal/solver"
	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/format"
	"github.com/iwvelando/fi-forecast/pkg/mathutil"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"go.uber.org/zap"
)

// Result messages.
const (
	MessageAlreadyOptimal = "Your plan already reaches financial independence by the target age; no optimization needed."
	MessageUnreachable    = "Financial independence is not reachable by the age ceiling with the current plan."
	MessageInvalidInput   = "Inputs are incomplete or out of range; no projection was made."
	ErrNoImprovementFound = "No improvement found: none of the tested scenarios brings financial independence forward."
	ErrCanceled           = "optimization canceled"
)

type Runner struct {
	logger  *zap.Logger
	options Options
	chain   *advisor.Chain
}

type scenario struct {
	stepUp   float64
	increase float64
}

// NewRunner constructs a Runner. A nil chain recommends with the local
// scorer only.
func NewRunner(logger *zap.Logger, options Options, chain *advisor.Chain) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	options.Normalize()
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer options: %w", err)
	}
	if chain == nil {
		chain = advisor.NewChain(logger, advisor.NewScorer(options.TargetAge), 0)
	}
	return &Runner{logger: logger, options: options, chain: chain}, nil
}

// Options returns the normalized options in use.
func (r *Runner) Options() Options {
	return r.options
}

// newSolver returns a solver with a cache scoped to one run.
func (r *Runner) newSolver() (*solver.Solver, *cache.Cache) {
	c := cache.New(r.options.CacheCapacity, r.options.CacheEvictionFraction)
	return solver.New(r.logger, r.options.Assumptions, c), c
}

// BaselineFIAge returns the FI age of the unchanged plan, or nil.
func (r *Runner) BaselineFIAge(inputs planning.Inputs) *int {
	inputs, _ = inputs.Normalize()
	if !inputs.Valid() {
		return nil
	}
	s, _ := r.newSolver()
	return s.FIAge(solver.ParamsFromInputs(inputs, inputs.MonthlyInvestment, 0))
}

// Breakdown returns the baseline per-age table.
func (r *Runner) Breakdown(inputs planning.Inputs) []planning.YearlyBreakdownRow {
	inputs, _ = inputs.Normalize()
	s, _ := r.newSolver()
	return s.Breakdown(inputs)
}

// Run executes one optimization. It never returns an error; failures are
// described in the Result.
func (r *Runner) Run(ctx context.Context, inputs planning.Inputs) optimization.Result {
	start := time.Now()
	logger := r.logger.With(zap.String("runCorrelationId", uuid.NewString()))
	defer func() {
		metrics.OptimizationDuration.Observe(time.Since(start).Seconds())
	}()

	inputs, warnings := inputs.Normalize()
	for _, w := range warnings {
		logger.Warn("input normalized", zap.String("op", "optimizer.Run"), zap.String("warning", w))
	}
	if !inputs.Valid() {
		metrics.OptimizationRuns.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		message := MessageInvalidInput
		if len(warnings) > 0 {
			message = fmt.Sprintf("%s %s", message, strings.Join(warnings, "; "))
		}
		return optimization.Result{Solutions: []optimization.Solution{}, Message: message}
	}

	s, runCache := r.newSolver()
	baseline := s.FIAge(solver.ParamsFromInputs(inputs, inputs.MonthlyInvestment, 0))

	if baseline != nil && *baseline <= r.options.TargetAge {
		logger.Info("baseline already meets target age",
			zap.String("op", "optimizer.Run"),
			zap.Int("baselineFiAge", *baseline),
			zap.Int("targetAge", r.options.TargetAge),
		)
		metrics.OptimizationRuns.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return optimization.Result{
			BaselineFIAge:    baseline,
			Solutions:        []optimization.Solution{},
			SkipOptimization: true,
			Message:          MessageAlreadyOptimal,
		}
	}

	effective := constants.UnreachableBaselineAge
	result := optimization.Result{BaselineFIAge: baseline}
	if baseline != nil {
		effective = *baseline
		result.Baseline = &optimization.Solution{
			NewMonthlySip: inputs.MonthlyInvestment,
			FIAge:         *baseline,
		}
	} else {
		result.Message = MessageUnreachable
	}

	result.Solutions = r.search(ctx, s, inputs, effective)
	if ctx.Err() != nil {
		metrics.OptimizationRuns.WithLabelValues(metrics.OutcomeStale).Inc()
		result.Solutions = []optimization.Solution{}
		result.Error = ErrCanceled
		return result
	}

	if len(result.Solutions) == 0 {
		logger.Info("no improving scenario found",
			zap.String("op", "optimizer.Run"),
			zap.Int("effectiveBaseline", effective),
		)
		metrics.OptimizationRuns.WithLabelValues(metrics.OutcomeNoImprovement).Inc()
		result.Error = ErrNoImprovementFound
		return result
	}

	rec := r.chain.Recommend(ctx, advisor.Request{
		BaselineFIAge: effective,
		Solutions:     result.Solutions,
		Preferences: advisor.Preferences{
			PreferLowerStepUp:   true,
			PreferLowerIncrease: true,
			TargetAge:           r.options.TargetAge,
		},
	})
	if rec != nil {
		chosen := result.Solutions[rec.RecommendedIndex]
		result.Recommendation = rec
		result.RecommendedSolution = &chosen
	}

	stats := runCache.Stats()
	logger.Debug("projection cache",
		zap.String("op", "optimizer.Run"),
		zap.Int("entries", stats.Entries),
		zap.Int("capacity", runCache.Capacity()),
		zap.Int64("hits", stats.Hits),
		zap.Int64("misses", stats.Misses),
		zap.Int64("evictions", stats.Evictions),
	)

	logger.Info("optimization complete",
		zap.String("op", "optimizer.Run"),
		zap.Int("effectiveBaseline", effective),
		zap.Int("solutions", len(result.Solutions)),
		zap.Int("bestFiAge", result.Solutions[0].FIAge),
		zap.Duration("elapsed", time.Since(start)),
	)
	metrics.OptimizationRuns.WithLabelValues(metrics.OutcomeOptimized).Inc()
	return result
}

// search evaluates the three scenario families concurrently and returns the
// improving candidates in display order.
func (r *Runner) search(ctx context.Context, s *solver.Solver, inputs planning.Inputs, effective int) []optimization.Solution {
	stepUps := make([]scenario, 0, len(r.options.StepUpValues))
	for _, v := range r.options.StepUpValues {
		stepUps = append(stepUps, scenario{stepUp: v})
	}
	increases := make([]scenario, 0, len(r.options.IncreaseValues))
	for _, v := range r.options.IncreaseValues {
		increases = append(increases, scenario{increase: v})
	}
	combined := make([]scenario, 0, len(r.options.CombinedValues))
	for _, pair := range r.options.CombinedValues {
		combined = append(combined, scenario{stepUp: pair[0], increase: pair[1]})
	}

	phases := [][]scenario{stepUps, increases, combined}
	found := make([][]optimization.Solution, len(phases))

	var wg sync.WaitGroup
	for i, phase := range phases {
		wg.Add(1)
		go func(i int, phase []scenario) {
			defer wg.Done()
			found[i] = r.evaluatePhase(ctx, s, inputs, effective, phase)
		}(i, phase)
	}
	wg.Wait()

	seen := make(map[scenario]bool)
	var solutions []optimization.Solution
	for _, phase := range found {
		for _, sol := range phase {
			key := scenario{stepUp: sol.StepUpPercent, increase: sol.SipIncreasePercent}
			if seen[key] {
				continue
			}
			seen[key] = true
			solutions = append(solutions, sol)
		}
	}

	sort.SliceStable(solutions, func(i, j int) bool {
		a, b := solutions[i], solutions[j]
		if a.FIAge != b.FIAge {
			return a.FIAge < b.FIAge
		}
		if a.StepUpPercent != b.StepUpPercent {
			return a.StepUpPercent < b.StepUpPercent
		}
		return a.SipIncreasePercent < b.SipIncreasePercent
	})

	if solutions == nil {
		solutions = []optimization.Solution{}
	}
	return solutions
}

func (r *Runner) evaluatePhase(ctx context.Context, s *solver.Solver, inputs planning.Inputs, effective int, phase []scenario) []optimization.Solution {
	var out []optimization.Solution
	for _, sc := range phase {
		if ctx.Err() != nil {
			return out
		}
		if sol, ok := evaluate(s, inputs, sc, effective); ok {
			out = append(out, sol)
		}
	}
	return out
}

// evaluate keeps a scenario only when it changes the plan and its FI age is
// strictly earlier than effective.
func evaluate(s *solver.Solver, inputs planning.Inputs, sc scenario, effective int) (optimization.Solution, bool) {
	if sc.stepUp == 0 && sc.increase == 0 {
		return optimization.Solution{}, false
	}
	newSip := format.RoundAmount(inputs.MonthlyInvestment + mathutil.ApplyPercentage(inputs.MonthlyInvestment, sc.increase))
	age := s.FIAge(solver.ParamsFromInputs(inputs, newSip, sc.stepUp))
	if age == nil || *age >= effective {
		return optimization.Solution{}, false
	}
	return optimization.Solution{
		StepUpPercent:      sc.stepUp,
		SipIncreasePercent: sc.increase,
		NewMonthlySip:      newSip,
		FIAge:              *age,
		ImprovementYears:   effective - *age,
	}, true
}
