package judge

import (
	"fmt"
	"strings"

	"github.com/avoskres/defectbase/internal/model"
)

// NewProvider creates a single judgment provider based on configuration.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown judgment provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// NewFromConfig builds the configured provider chain: primary plus ordered
// fallbacks, wrapped in a rate limiter when one is configured.
func NewFromConfig(cfg *model.Config) (Provider, error) {
	base := Config{
		Provider:  cfg.LLM.Provider,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
	}

	primary, err := NewProvider(base)
	if err != nil {
		return nil, err
	}

	provider := primary
	if len(cfg.LLM.Fallbacks) > 0 {
		chain := []Provider{primary}
		for _, name := range cfg.LLM.Fallbacks {
			fbCfg := base
			fbCfg.Provider = name
			fbCfg.Model = "" // Provider defaults; fallback backends rarely share model names
			fb, err := NewProvider(fbCfg)
			if err != nil {
				return nil, fmt.Errorf("fallback %q: %w", name, err)
			}
			chain = append(chain, fb)
		}
		provider, err = NewFallbackProvider(chain...)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Concurrency.JudgeRPS > 0 {
		provider = NewRateLimitedProvider(provider, cfg.Concurrency.JudgeRPS, cfg.Concurrency.JudgeBurst)
	}
	return provider, nil
}
