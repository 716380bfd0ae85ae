package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedEmbedder wraps an Embedder with an in-memory cache. Diagnostic
// sessions repeat queries across turns; identical text never hits the
// backend twice within the TTL.
type CachedEmbedder struct {
	inner Embedder
	cache *gocache.Cache
}

// NewCachedEmbedder creates a caching wrapper around e.
func NewCachedEmbedder(e Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: e,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Dimension returns the wrapped embedder's vector length.
func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

// Embed returns a cached vector when available, delegating otherwise.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if val, found := c.cache.Get(key); found {
		return val.([]float32), nil
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vector, gocache.DefaultExpiration)
	return vector, nil
}

// cacheKey generates a cache key from the text
func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "embed:v1:" + hex.EncodeToString(hash[:])
}
