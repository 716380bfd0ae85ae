package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/avoskres/defectbase/internal/embed"
	"github.com/avoskres/defectbase/internal/judge"
	"github.com/avoskres/defectbase/internal/model"
	"github.com/avoskres/defectbase/internal/store"
)

// loadConfig builds the effective configuration: defaults, then config
// file / DEFECTBASE_* env via viper, then well-known API key variables.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	setString := func(dst *string, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	setInt := func(dst *int, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	setFloat := func(dst *float64, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if viper.IsSet(key) {
			*dst = viper.GetDuration(key)
		}
	}

	setInt(&cfg.Gate.MinBodyRunes, "gate.min_body_runes")
	setFloat(&cfg.Gate.RelevanceThreshold, "gate.relevance_threshold")
	setFloat(&cfg.Gate.QualityThreshold, "gate.quality_threshold")
	setInt(&cfg.Gate.MinSignalTerms, "gate.min_signal_terms")
	if viper.IsSet("gate.signal_terms") {
		cfg.Gate.SignalTerms = viper.GetStringSlice("gate.signal_terms")
	}

	setInt(&cfg.QA.MinQuestionRunes, "qa.min_question_runes")
	setInt(&cfg.QA.MinAnswerRunes, "qa.min_answer_runes")
	setInt(&cfg.QA.MinPairs, "qa.min_pairs")
	setInt(&cfg.QA.MaxPairs, "qa.max_pairs")

	setInt(&cfg.Retrieval.DefaultK, "retrieval.default_k")
	setInt(&cfg.Retrieval.OverfetchFactor, "retrieval.overfetch_factor")
	setFloat(&cfg.Retrieval.MinSimilarity, "retrieval.min_similarity")

	setString(&cfg.LLM.Provider, "llm.provider")
	setString(&cfg.LLM.Model, "llm.model")
	setString(&cfg.LLM.BaseURL, "llm.base_url")
	setDuration(&cfg.LLM.Timeout, "llm.timeout")
	setInt(&cfg.LLM.MaxTokens, "llm.max_tokens")
	if viper.IsSet("llm.fallbacks") {
		cfg.LLM.Fallbacks = viper.GetStringSlice("llm.fallbacks")
	}

	setString(&cfg.Embedding.Model, "embedding.model")
	setString(&cfg.Embedding.BaseURL, "embedding.base_url")
	setInt(&cfg.Embedding.Dimension, "embedding.dimension")
	setDuration(&cfg.Embedding.Timeout, "embedding.timeout")
	setDuration(&cfg.Embedding.CacheTTL, "embedding.cache_ttl")

	setString(&cfg.Store.URL, "store.url")
	setString(&cfg.Store.ArticleCollection, "store.article_collection")
	setString(&cfg.Store.QACollection, "store.qa_collection")
	setDuration(&cfg.Store.Timeout, "store.timeout")

	setInt(&cfg.Concurrency.CurationWorkers, "concurrency.curation_workers")
	setFloat(&cfg.Concurrency.JudgeRPS, "concurrency.judge_rps")
	setInt(&cfg.Concurrency.JudgeBurst, "concurrency.judge_burst")

	// API keys come from the environment, never the config file.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
		cfg.Embedding.APIKey = key
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.Provider == "ollama" {
		cfg.LLM.BaseURL = baseURL
	}

	return cfg
}

// newEmbedder builds the embedding service with its cache decorator.
func newEmbedder(cfg *model.Config) (embed.Embedder, error) {
	base, err := embed.NewOpenAIEmbedder(embed.Config{
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	if cfg.Embedding.CacheTTL <= 0 {
		return base, nil
	}
	return embed.NewCachedEmbedder(base, cfg.Embedding.CacheTTL), nil
}

// newStore builds the knowledge store handle.
func newStore(cfg *model.Config) store.Store {
	return store.NewQdrant(cfg.Store.URL, cfg.Store.Timeout)
}

// newJudge builds the judgment provider chain.
func newJudge(cfg *model.Config) (judge.Provider, error) {
	provider, err := judge.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("judgment service: %w", err)
	}
	return provider, nil
}
