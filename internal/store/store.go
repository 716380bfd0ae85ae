// Package store provides the knowledge store capability: a vector index
// with structured payload attached, supporting upsert-by-id and filtered
// similarity search.
package store

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable marks store transport failures and timeouts.
	ErrUnavailable = errors.New("knowledge store unavailable")

	// ErrNotFound marks an id lookup miss. A normal outcome, not a failure.
	ErrNotFound = errors.New("record not found")
)

// Point is a vector with its attached payload, keyed by a derived id.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Candidate is a single result from a filtered similarity query.
type Candidate struct {
	ID         string         `json:"id"`
	Similarity float64        `json:"similarity"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Filter is a conjunctive constraint set over payload fields. A key with
// one value requires an exact/membership match; several values match any
// of them. Absent keys impose no constraint.
type Filter map[string][]string

// Store abstracts the vector database. Upsert is idempotent by id: the
// store resolves concurrent writes to the same derived id as
// last-writer-wins, and that is the only concurrency contract callers
// depend on.
type Store interface {
	// EnsureCollection creates a collection if it does not exist.
	EnsureCollection(ctx context.Context, name string, dimension int) error

	// Upsert inserts or overwrites points keyed by their ids.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query performs filtered similarity search, most similar first.
	Query(ctx context.Context, collection string, vector []float32, filter Filter, limit int) ([]Candidate, error)

	// Get returns the payload for an id, or ErrNotFound.
	Get(ctx context.Context, collection string, id string) (map[string]any, error)

	// SetPayload merges patch into the stored payload of an id without
	// touching its vector.
	SetPayload(ctx context.Context, collection string, id string, patch map[string]any) error
}
