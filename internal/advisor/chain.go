package advisor

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/fi-forecast/internal/metrics"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"go.uber.org/zap"
)

// Chain tries providers in order and falls back to the local scorer.
type Chain struct {
	logger    *zap.Logger
	providers []Provider
	scorer    *Scorer
	timeout   time.Duration
}

// NewChain builds a chain. timeout bounds each remote provider call; zero
// leaves the caller's context as the only bound. A nil scorer uses the
// default target age.
func NewChain(logger *zap.Logger, scorer *Scorer, timeout time.Duration, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scorer == nil {
		scorer = NewScorer(0)
	}
	return &Chain{logger: logger, providers: providers, scorer: scorer, timeout: timeout}
}

// Recommend returns nil only when req has no solutions. Remote failures,
// timeouts and malformed replies are logged and the next provider is tried.
func (c *Chain) Recommend(ctx context.Context, req Request) *optimization.Recommendation {
	if len(req.Solutions) == 0 {
		return nil
	}

	for _, provider := range c.providers {
		rec, err := c.try(ctx, provider, req)
		if err == nil {
			metrics.AdvisoryRequests.WithLabelValues(provider.Name(), "success").Inc()
			return rec
		}

		metrics.AdvisoryRequests.WithLabelValues(provider.Name(), outcomeLabel(err)).Inc()
		c.logger.Warn("advisory provider unavailable, trying next",
			zap.String("op", "advisor.Chain.Recommend"),
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)
	}

	rec := c.scorer.Select(req)
	metrics.AdvisoryRequests.WithLabelValues(ScorerName, "success").Inc()
	return &rec
}

func (c *Chain) try(ctx context.Context, provider Provider, req Request) (*optimization.Recommendation, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rec, err := provider.Recommend(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrAdvisoryTimeout) {
			return nil, errors.Join(ErrAdvisoryTimeout, err)
		}
		return nil, err
	}
	if err := Validate(req, rec); err != nil {
		return nil, err
	}
	if rec.Source == "" {
		rec.Source = provider.Name()
	}
	return rec, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrAdvisoryTimeout):
		return "timeout"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "failed"
	}
}
