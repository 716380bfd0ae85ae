package judge

import (
	"context"
	"fmt"
	"strings"
)

// FallbackProvider wraps multiple providers and tries them in order.
// Gate, extractor, and synthesizer code sees a single Provider; a failed
// primary (e.g. remote API) automatically falls through to the next
// backend (e.g. local Ollama).
type FallbackProvider struct {
	providers []Provider

	// OnFallback is called when a provider fails and the next one is tried.
	OnFallback func(index int, name string, err error)
}

// NewFallbackProvider creates a fallback provider from the given providers.
// At least one provider is required.
func NewFallbackProvider(providers ...Provider) (*FallbackProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("fallback provider: at least one provider is required")
	}
	return &FallbackProvider{providers: providers}, nil
}

func (f *FallbackProvider) Name() string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}

// IsAvailable reports whether any wrapped provider is reachable.
func (f *FallbackProvider) IsAvailable(ctx context.Context) bool {
	for _, p := range f.providers {
		if p.IsAvailable(ctx) {
			return true
		}
	}
	return false
}

// Complete tries each provider in order until one succeeds.
func (f *FallbackProvider) Complete(ctx context.Context, req Request) (string, error) {
	var lastErr error
	for i, p := range f.providers {
		reply, err := p.Complete(ctx, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if f.OnFallback != nil {
			f.OnFallback(i, p.Name(), err)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s: cancelled after %d attempts: %v", ErrUnavailable, req.Task, i+1, ctx.Err())
		}
	}
	return "", fmt.Errorf("all %d providers failed, last error: %w", len(f.providers), lastErr)
}
