package model

import "time"

// Config is the complete runtime configuration.
// Hierarchy: CLI flags > DEFECTBASE_* env > config file > defaults.
type Config struct {
	Gate        GateConfig        `yaml:"gate" json:"gate"`
	QA          QAConfig          `yaml:"qa" json:"qa"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" json:"retrieval"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Embedding   EmbeddingConfig   `yaml:"embedding" json:"embedding"`
	Store       StoreConfig       `yaml:"store" json:"store"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
}

// GateConfig controls the Content Gate thresholds.
type GateConfig struct {
	MinBodyRunes       int      `yaml:"min_body_runes" json:"min_body_runes"`             // Length floor; shorter bodies are rejected without judgment calls
	RelevanceThreshold float64  `yaml:"relevance_threshold" json:"relevance_threshold"`   // Accept requires relevance >= this
	QualityThreshold   float64  `yaml:"quality_threshold" json:"quality_threshold"`       // Accept requires quality >= this
	MinSignalTerms     int      `yaml:"min_signal_terms" json:"min_signal_terms"`         // Distinct actionable terms required
	SignalTerms        []string `yaml:"signal_terms,omitempty" json:"signal_terms,omitempty"` // Overrides the built-in vocabulary when set
}

// QAConfig controls QA pair synthesis and validation.
type QAConfig struct {
	MinQuestionRunes int `yaml:"min_question_runes" json:"min_question_runes"`
	MinAnswerRunes   int `yaml:"min_answer_runes" json:"min_answer_runes"`
	MinPairs         int `yaml:"min_pairs" json:"min_pairs"` // Requested from the judgment service
	MaxPairs         int `yaml:"max_pairs" json:"max_pairs"`
}

// RetrievalConfig controls hybrid search behavior.
type RetrievalConfig struct {
	DefaultK        int     `yaml:"default_k" json:"default_k"`
	OverfetchFactor int     `yaml:"overfetch_factor" json:"overfetch_factor"` // Raw candidates = factor * k
	MinSimilarity   float64 `yaml:"min_similarity" json:"min_similarity"`     // Candidates below are dropped
}

// LLMConfig configures the judgment service providers.
type LLMConfig struct {
	Provider  string        `yaml:"provider" json:"provider"`   // openai, ollama
	Fallbacks []string      `yaml:"fallbacks,omitempty" json:"fallbacks,omitempty"` // Tried in order after the primary
	Model     string        `yaml:"model" json:"model"`
	APIKey    string        `yaml:"api_key,omitempty" json:"-"`
	BaseURL   string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"` // Per judgment call
	MaxTokens int           `yaml:"max_tokens" json:"max_tokens"`
}

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	Model     string        `yaml:"model" json:"model"`
	APIKey    string        `yaml:"api_key,omitempty" json:"-"`
	BaseURL   string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Dimension int           `yaml:"dimension" json:"dimension"` // Must agree with the store collections
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl" json:"cache_ttl"` // 0 disables the embedding cache
}

// StoreConfig configures the knowledge store connection.
type StoreConfig struct {
	URL               string        `yaml:"url" json:"url"`
	ArticleCollection string        `yaml:"article_collection" json:"article_collection"`
	QACollection      string        `yaml:"qa_collection" json:"qa_collection"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
}

// ConcurrencyConfig bounds parallel work and external call rates.
type ConcurrencyConfig struct {
	CurationWorkers int     `yaml:"curation_workers" json:"curation_workers"`
	JudgeRPS        float64 `yaml:"judge_rps" json:"judge_rps"` // Judgment calls per second, 0 disables limiting
	JudgeBurst      int     `yaml:"judge_burst" json:"judge_burst"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Gate: GateConfig{
			MinBodyRunes:       200,
			RelevanceThreshold: 0.7,
			QualityThreshold:   0.6,
			MinSignalTerms:     3,
		},
		QA: QAConfig{
			MinQuestionRunes: 10,
			MinAnswerRunes:   50,
			MinPairs:         3,
			MaxPairs:         5,
		},
		Retrieval: RetrievalConfig{
			DefaultK:        5,
			OverfetchFactor: 2,
			MinSimilarity:   0.3,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   30 * time.Second,
			MaxTokens: 2000,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			Dimension: 1536,
			Timeout:   15 * time.Second,
			CacheTTL:  10 * time.Minute,
		},
		Store: StoreConfig{
			URL:               "http://localhost:6333",
			ArticleCollection: "kb_articles",
			QACollection:      "kb_qa",
			Timeout:           10 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			CurationWorkers: 4,
			JudgeRPS:        2,
			JudgeBurst:      4,
		},
	}
}
