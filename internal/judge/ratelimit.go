package judge

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a provider with a token-bucket limiter so
// parallel curation passes cannot flood the backend.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider creates a rate-limited wrapper around p.
func NewRateLimitedProvider(p Provider, requestsPerSecond float64, burst int) *RateLimitedProvider {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (p *RateLimitedProvider) Name() string {
	return p.inner.Name()
}

func (p *RateLimitedProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Complete waits for limiter clearance, then delegates.
func (p *RateLimitedProvider) Complete(ctx context.Context, req Request) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %s: rate limit wait: %v", ErrUnavailable, req.Task, err)
	}
	return p.inner.Complete(ctx, req)
}
