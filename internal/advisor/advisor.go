// Package advisor chooses one optimization scenario to recommend. Remote
// providers are tried in priority order and the local scorer always answers
// last.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/fi-forecast/pkg/optimization"
)

var (
	ErrAdvisoryTimeout   = errors.New("ADVISORY_TIMEOUT")
	ErrAdvisoryFailed    = errors.New("ADVISORY_FAILED")
	ErrMalformedResponse = errors.New("ADVISORY_MALFORMED_RESPONSE")
	ErrNoSolutions       = errors.New("no solutions to recommend from")
)

// Preferences steer the recommendation.
type Preferences struct {
	PreferLowerStepUp   bool `json:"preferLowerStepUp"`
	PreferLowerIncrease bool `json:"preferLowerIncrease"`
	TargetAge           int  `json:"targetAge"`
}

// Request is what every provider receives. BaselineFIAge is the effective
// baseline, so an unreachable baseline is already substituted.
type Request struct {
	BaselineFIAge int                     `json:"baselineFiAge"`
	Solutions     []optimization.Solution `json:"solutions"`
	Preferences   Preferences             `json:"preferences"`
}

// Provider produces a recommendation for a request.
type Provider interface {
	Name() string
	Recommend(ctx context.Context, req Request) (*optimization.Recommendation, error)
}

// Validate rejects recommendations that cannot be applied to req.
func Validate(req Request, rec *optimization.Recommendation) error {
	if rec == nil {
		return fmt.Errorf("%w: empty recommendation", ErrMalformedResponse)
	}
	if rec.RecommendedIndex < 0 || rec.RecommendedIndex >= len(req.Solutions) {
		return fmt.Errorf("%w: recommendedIndex %d out of range [0, %d)",
			ErrMalformedResponse, rec.RecommendedIndex, len(req.Solutions))
	}
	if rec.Difficulty == optimization.DifficultyUnknown {
		return fmt.Errorf("%w: missing difficulty", ErrMalformedResponse)
	}
	return nil
}
