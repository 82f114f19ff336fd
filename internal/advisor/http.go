package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"go.uber.org/zap"
)

// HTTPConfig configures a remote advisory provider.
type HTTPConfig struct {
	Name       string
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// HTTPProvider calls a remote JSON advisory service.
type HTTPProvider struct {
	config HTTPConfig
	client *http.Client
	logger *zap.Logger
}

type httpResponse struct {
	RecommendedIndex *int     `json:"recommendedIndex"`
	Explanation      string   `json:"explanation"`
	Alternatives     []string `json:"alternatives"`
	Difficulty       string   `json:"difficulty"`
}

// NewHTTPProvider constructs a provider. The HTTP client carries no timeout
// of its own; deadlines come from the request context.
func NewHTTPProvider(logger *zap.Logger, config HTTPConfig) *HTTPProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Name == "" {
		config.Name = "remote"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &HTTPProvider{
		config: config,
		client: &http.Client{},
		logger: logger.With(zap.String("provider", config.Name)),
	}
}

// Name implements Provider.
func (p *HTTPProvider) Name() string {
	return p.config.Name
}

// Recommend implements Provider. Non-200 replies and transport errors are
// retried with exponential backoff until MaxRetries or the context runs out.
func (p *HTTPProvider) Recommend(ctx context.Context, req Request) (*optimization.Recommendation, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrAdvisoryFailed, err)
	}
	requestID := uuid.NewString()

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrAdvisoryTimeout
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/recommend", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAdvisoryFailed, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Request-ID", requestID)
		if p.config.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
		}

		resp, lastErr = p.client.Do(httpReq)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrAdvisoryTimeout
		}
		p.logger.Debug("advisory attempt failed",
			zap.String("op", "advisor.HTTPProvider.Recommend"),
			zap.String("requestId", requestID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
	}

	if lastErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrAdvisoryTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrAdvisoryFailed, lastErr)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrAdvisoryFailed)
	}
	defer resp.Body.Close()

	var payload httpResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	if payload.RecommendedIndex == nil {
		return nil, fmt.Errorf("%w: missing recommendedIndex", ErrMalformedResponse)
	}
	difficulty, ok := optimization.ParseDifficulty(payload.Difficulty)
	if !ok {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrMalformedResponse, payload.Difficulty)
	}

	if len(payload.Alternatives) > constants.MaxAlternatives {
		payload.Alternatives = payload.Alternatives[:constants.MaxAlternatives]
	}

	rec := &optimization.Recommendation{
		RecommendedIndex: *payload.RecommendedIndex,
		Explanation:      strings.TrimSpace(payload.Explanation),
		Alternatives:     payload.Alternatives,
		Difficulty:       difficulty,
		Source:           p.config.Name,
	}
	if err := Validate(req, rec); err != nil {
		return nil, err
	}

	p.logger.Debug("advisory recommendation received",
		zap.String("op", "advisor.HTTPProvider.Recommend"),
		zap.String("requestId", requestID),
		zap.Int("recommendedIndex", rec.RecommendedIndex),
	)
	return rec, nil
}
