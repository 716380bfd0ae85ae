// Package embed provides the embedding service capability: mapping text to
// a fixed-dimension vector shared with the knowledge store.
package embed

import (
	"context"
	"errors"
)

// ErrUnavailable marks embedding backend transport failures and timeouts.
// A retrieval or curation pass that hits it fails loudly; it is never
// converted into a silent empty result.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder maps text to a fixed-length numeric vector.
type Embedder interface {
	// Embed returns the vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector length this embedder produces
	Dimension() int
}
