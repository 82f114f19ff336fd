package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type stubProvider struct {
	name  string
	rec   *optimization.Recommendation
	err   error
	delay time.Duration
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Recommend(ctx context.Context, _ Request) (*optimization.Recommendation, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	rec := *s.rec
	return &rec, nil
}

func TestChainUsesFirstHealthyProvider(t *testing.T) {
	failing := &stubProvider{name: "primary", err: ErrAdvisoryFailed}
	healthy := &stubProvider{name: "secondary", rec: &optimization.Recommendation{
		RecommendedIndex: 1,
		Explanation:      "remote",
		Difficulty:       optimization.DifficultyModerate,
	}}
	unused := &stubProvider{name: "tertiary", rec: &optimization.Recommendation{Difficulty: optimization.DifficultyEasy}}

	chain := NewChain(zap.NewNop(), NewScorer(45), time.Second, failing, healthy, unused)
	rec := chain.Recommend(context.Background(), testRequest())

	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.RecommendedIndex)
	assert.Equal(t, "secondary", rec.Source)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
	assert.Zero(t, unused.calls)
}

func TestChainFallsBackOnMalformedResponse(t *testing.T) {
	outOfRange := &stubProvider{name: "primary", rec: &optimization.Recommendation{
		RecommendedIndex: 7,
		Difficulty:       optimization.DifficultyEasy,
	}}
	noDifficulty := &stubProvider{name: "secondary", rec: &optimization.Recommendation{RecommendedIndex: 0}}

	chain := NewChain(zap.NewNop(), NewScorer(45), time.Second, outOfRange, noDifficulty)
	rec := chain.Recommend(context.Background(), testRequest())

	require.NotNil(t, rec)
	assert.Equal(t, ScorerName, rec.Source)
	assert.Equal(t, 2, rec.RecommendedIndex)
}

func TestChainTimeoutDoesNotStarveFallback(t *testing.T) {
	slow := &stubProvider{name: "slow", delay: time.Minute, rec: &optimization.Recommendation{Difficulty: optimization.DifficultyEasy}}

	chain := NewChain(zap.NewNop(), NewScorer(45), 20*time.Millisecond, slow)
	start := time.Now()
	rec := chain.Recommend(context.Background(), testRequest())

	require.NotNil(t, rec)
	assert.Equal(t, ScorerName, rec.Source)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestChainCanceledContextStillAnswers(t *testing.T) {
	remote := &stubProvider{name: "remote", delay: time.Second, rec: &optimization.Recommendation{Difficulty: optimization.DifficultyEasy}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := NewChain(nil, nil, 0, remote).Recommend(ctx, testRequest())
	require.NotNil(t, rec)
	assert.Equal(t, ScorerName, rec.Source)
}

func TestChainWithoutProviders(t *testing.T) {
	chain := NewChain(zap.NewNop(), NewScorer(45), 0)

	assert.Nil(t, chain.Recommend(context.Background(), Request{BaselineFIAge: 52}))

	rec := chain.Recommend(context.Background(), testRequest())
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.RecommendedIndex)
}

func TestOutcomeLabel(t *testing.T) {
	assert.Equal(t, "timeout", outcomeLabel(ErrAdvisoryTimeout))
	assert.Equal(t, "timeout", outcomeLabel(errors.Join(ErrAdvisoryTimeout, context.DeadlineExceeded)))
	assert.Equal(t, "malformed", outcomeLabel(ErrMalformedResponse))
	assert.Equal(t, "failed", outcomeLabel(errors.New("boom")))
}

func TestValidate(t *testing.T) {
	req := testRequest()

	assert.ErrorIs(t, Validate(req, nil), ErrMalformedResponse)
	assert.ErrorIs(t, Validate(req, &optimization.Recommendation{RecommendedIndex: 3, Difficulty: optimization.DifficultyEasy}), ErrMalformedResponse)
	assert.ErrorIs(t, Validate(req, &optimization.Recommendation{RecommendedIndex: 0}), ErrMalformedResponse)
	assert.NoError(t, Validate(req, &optimization.Recommendation{RecommendedIndex: 2, Difficulty: optimization.DifficultyAggressive}))
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string {
	return m.Called().String(0)
}

func (m *mockProvider) Recommend(ctx context.Context, req Request) (*optimization.Recommendation, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*optimization.Recommendation)
	return rec, args.Error(1)
}

func TestChainForwardsRequestAndPreferences(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Name").Return("mocked")
	provider.On("Recommend", mock.Anything, mock.MatchedBy(func(req Request) bool {
		return req.BaselineFIAge == 52 && len(req.Solutions) == 3 && req.Preferences.TargetAge == 48
	})).Return(&optimization.Recommendation{
		RecommendedIndex: 1,
		Explanation:      "remote pick",
		Difficulty:       optimization.DifficultyModerate,
	}, nil).Once()

	req := testRequest()
	req.Preferences.TargetAge = 48

	chain := NewChain(zaptest.NewLogger(t), NewScorer(45), time.Second, provider)
	rec := chain.Recommend(context.Background(), req)

	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.RecommendedIndex)
	assert.Equal(t, "mocked", rec.Source)
	provider.AssertExpectations(t)
}

func TestChainFallsBackWhenMockProviderErrors(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Name").Return("mocked")
	provider.On("Recommend", mock.Anything, mock.Anything).Return(nil, ErrAdvisoryFailed).Once()

	rec := NewChain(zaptest.NewLogger(t), NewScorer(45), time.Second, provider).Recommend(context.Background(), testRequest())

	require.NotNil(t, rec)
	assert.Equal(t, ScorerName, rec.Source)
	provider.AssertNumberOfCalls(t, "Recommend", 1)
}
