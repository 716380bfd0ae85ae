package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error kinds recognizable to callers. A judgment that cannot be obtained or
// parsed is never silently substituted with a guessed default; each caller
// applies its own local failure policy.
var (
	// ErrUnavailable marks transport failures and timeouts.
	ErrUnavailable = errors.New("judgment service unavailable")

	// ErrParse marks replies whose JSON payload is missing or malformed.
	ErrParse = errors.New("judgment response unparsable")
)

// Provider is a stateless judgment backend: given a task prompt, it returns
// raw model text expected to contain one JSON object.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs one judgment call and returns the raw reply text
	Complete(ctx context.Context, req Request) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for one judgment call.
type Request struct {
	// Task is a short descriptor of what is being judged (relevance,
	// quality, extraction, qa), used for diagnostics only.
	Task string

	// System is the system prompt establishing the judge's role.
	System string

	// Prompt is the full task prompt including the text under judgment
	// and the schema the reply must follow.
	Prompt string

	// MaxTokens limits the response length (0 = provider default).
	MaxTokens int
}

// Config holds judgment provider configuration.
type Config struct {
	// Provider name: "openai", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout per judgment call
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int
}

// Judge runs one judgment call against the provider and strictly decodes the
// JSON object embedded in the reply into out. Shape violations surface as
// ErrParse; transport failures as ErrUnavailable. The dynamic, model-returned
// JSON carries no compile-time guarantee, so out should use optional fields
// and callers must validate what they receive.
func Judge(ctx context.Context, p Provider, req Request, out any) error {
	reply, err := p.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrParse) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, req.Task, err)
	}

	raw, ok := extractJSON(reply)
	if !ok {
		return fmt.Errorf("%w: %s: no JSON object in reply", ErrParse, req.Task)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, req.Task, err)
	}
	return nil
}

// extractJSON pulls the first top-level JSON object out of model text.
// Models often wrap the object in prose or code fences.
func extractJSON(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := reply[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}
