package solver

import (
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"go.uber.org/zap"
)

// Breakdown returns one row per age from CurrentAge to MaxAge describing the
// plan if FI were declared at that age, with no step-up. Invalid inputs
// produce no rows.
func (s *Solver) Breakdown(in planning.Inputs) []planning.YearlyBreakdownRow {
	p := ParamsFromInputs(in, in.MonthlyInvestment, 0)
	if !p.valid() {
		s.logger.Debug("skipping breakdown for invalid inputs",
			zap.String("op", "solver.Breakdown"),
			zap.Int("currentAge", in.CurrentAge),
		)
		return nil
	}

	rows := make([]planning.YearlyBreakdownRow, 0, p.MaxAge-p.CurrentAge+1)
	for age := p.CurrentAge; age <= p.MaxAge; age++ {
		yearsElapsed := age - p.CurrentAge
		target := s.assumptions.TargetMonthlyWithdrawal(p.MonthlyExpense, yearsElapsed)
		rows = append(rows, planning.YearlyBreakdownRow{
			Age:              age,
			ProjectedCorpus:  s.CorpusAt(p, yearsElapsed),
			TargetWithdrawal: target,
			GrossWithdrawal:  s.assumptions.GrossWithdrawal(target),
			YearsRemaining:   p.MaxAge - age,
			Sustainable:      s.Sustainable(p, age),
		})
	}

	s.logger.Debug("built yearly breakdown",
		zap.String("op", "solver.Breakdown"),
		zap.Int("rows", len(rows)),
	)
	return rows
}
