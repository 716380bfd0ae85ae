package embed

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type countingEmbedder struct {
	calls int
	fail  bool
}

func (e *countingEmbedder) Dimension() int { return 3 }

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.fail {
		return nil, fmt.Errorf("%w: backend down", ErrUnavailable)
	}
	return []float32{1, 2, float32(len(text))}, nil
}

func TestCachedEmbedderHitsBackendOnce(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCachedEmbedder(inner, time.Minute)

	first, err := c.Embed(context.Background(), "how to fix stringing")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Embed(context.Background(), "how to fix stringing")
	if err != nil {
		t.Fatal(err)
	}

	if inner.calls != 1 {
		t.Errorf("backend called %d times, want 1", inner.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("vector lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached vector differs at %d", i)
		}
	}
}

func TestCachedEmbedderDistinguishesTexts(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCachedEmbedder(inner, time.Minute)

	if _, err := c.Embed(context.Background(), "stringing"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Embed(context.Background(), "warping"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("backend called %d times, want 2 for distinct texts", inner.calls)
	}
}

func TestCachedEmbedderDoesNotCacheFailures(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	c := NewCachedEmbedder(inner, time.Minute)

	if _, err := c.Embed(context.Background(), "stringing"); err == nil {
		t.Fatal("expected failure from backend")
	}

	inner.fail = false
	if _, err := c.Embed(context.Background(), "stringing"); err != nil {
		t.Fatalf("recovered backend still failing through cache: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("backend called %d times, want 2", inner.calls)
	}
}

func TestCachedEmbedderDimensionDelegates(t *testing.T) {
	c := NewCachedEmbedder(&countingEmbedder{}, time.Minute)
	if c.Dimension() != 3 {
		t.Errorf("Dimension() = %d, want 3", c.Dimension())
	}
}
