package cli

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigAppliesOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")

	viper.Set("gate.relevance_threshold", 0.8)
	viper.Set("qa.min_pairs", 2)
	viper.Set("qa.max_pairs", 7)
	viper.Set("embedding.timeout", "5s")
	viper.Set("store.article_collection", "custom_articles")

	cfg := loadConfig()

	if cfg.Gate.RelevanceThreshold != 0.8 {
		t.Errorf("relevance threshold = %v, want 0.8", cfg.Gate.RelevanceThreshold)
	}
	if cfg.QA.MinPairs != 2 || cfg.QA.MaxPairs != 7 {
		t.Errorf("qa pairs = %d-%d, want 2-7", cfg.QA.MinPairs, cfg.QA.MaxPairs)
	}
	if cfg.Embedding.Timeout != 5*time.Second {
		t.Errorf("embedding timeout = %v, want 5s", cfg.Embedding.Timeout)
	}
	if cfg.Store.ArticleCollection != "custom_articles" {
		t.Errorf("article collection = %q", cfg.Store.ArticleCollection)
	}
}

func TestLoadConfigKeepsDefaultsForUnsetKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")

	cfg := loadConfig()

	if cfg.Retrieval.DefaultK != 5 {
		t.Errorf("default k = %d, want 5", cfg.Retrieval.DefaultK)
	}
	if cfg.QA.MinPairs != 3 || cfg.QA.MaxPairs != 5 {
		t.Errorf("qa pairs = %d-%d, want defaults 3-5", cfg.QA.MinPairs, cfg.QA.MaxPairs)
	}
	if cfg.Embedding.Timeout != 15*time.Second {
		t.Errorf("embedding timeout = %v, want default 15s", cfg.Embedding.Timeout)
	}
}

func TestLoadConfigTakesKeysFromEnvironmentOnly(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := loadConfig()
	if cfg.LLM.APIKey != "sk-test" || cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("api keys = %q/%q, want both from the environment", cfg.LLM.APIKey, cfg.Embedding.APIKey)
	}
}
