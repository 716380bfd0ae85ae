package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config holds embedding provider configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	config Config
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder.
func NewOpenAIEmbedder(config Config) (*OpenAIEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}
	if config.Dimension <= 0 {
		config.Dimension = 1536
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Dimension returns the configured vector length.
func (e *OpenAIEmbedder) Dimension() int {
	return e.config.Dimension
}

// Embed returns the embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctxWithTimeout, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.config.Model),
		Input: []string{text},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timeout after %v", ErrUnavailable, e.config.Timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", ErrUnavailable)
	}

	vector := resp.Data[0].Embedding
	if len(vector) != e.config.Dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, store expects %d", len(vector), e.config.Dimension)
	}
	return vector, nil
}
