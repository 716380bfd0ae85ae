// Package retrieve implements the hybrid retrieval engine: vector
// similarity constrained by exact metadata filters, with deterministic
// ranking and deduplication independent of store tie-break behavior.
package retrieve

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/avoskres/defectbase/internal/embed"
	"github.com/avoskres/defectbase/internal/format"
	"github.com/avoskres/defectbase/internal/model"
	"github.com/avoskres/defectbase/internal/store"
)

// Evidence is one ranked article-form result.
type Evidence struct {
	Record     model.KnowledgeRecord `json:"record"`
	Similarity float64               `json:"similarity"`
}

// QAEvidence is one ranked question/answer result.
type QAEvidence struct {
	Record     model.QARecord `json:"record"`
	Similarity float64        `json:"similarity"`
}

// Engine plans hybrid queries. It holds no session state: filters derived
// from dialogue turns are passed in per call, never cached.
type Engine struct {
	embedder          embed.Embedder
	store             store.Store
	cfg               model.RetrievalConfig
	articleCollection string
	qaCollection      string
}

// New creates an engine over explicitly injected capability handles.
func New(embedder embed.Embedder, st store.Store, cfg *model.Config) *Engine {
	return &Engine{
		embedder:          embedder,
		store:             st,
		cfg:               cfg.Retrieval,
		articleCollection: cfg.Store.ArticleCollection,
		qaCollection:      cfg.Store.QACollection,
	}
}

// Search returns up to k article records matching every supplied filter,
// most relevant first. An empty result with nil error means no matching
// evidence; embedding or store failure surfaces as an error, never as a
// silent empty result.
func (e *Engine) Search(ctx context.Context, queryText string, filter store.Filter, k int) ([]Evidence, error) {
	candidates, err := e.query(ctx, e.articleCollection, queryText, filter, k)
	if err != nil {
		return nil, err
	}

	ranked := rank(candidates, k)

	evidence := make([]Evidence, len(ranked))
	for i, c := range ranked {
		evidence[i] = Evidence{
			Record:     format.RecordFromPayload(c.Payload),
			Similarity: c.Similarity,
		}
	}

	e.bumpUsage(ctx, evidence)
	return evidence, nil
}

// SearchQA mirrors Search over the QA collection, for direct question
// matching by the answer generator.
func (e *Engine) SearchQA(ctx context.Context, queryText string, filter store.Filter, k int) ([]QAEvidence, error) {
	candidates, err := e.query(ctx, e.qaCollection, queryText, filter, k)
	if err != nil {
		return nil, err
	}

	ranked := rank(candidates, k)

	evidence := make([]QAEvidence, len(ranked))
	for i, c := range ranked {
		evidence[i] = QAEvidence{
			Record:     format.QAFromPayload(c.Payload),
			Similarity: c.Similarity,
		}
	}
	return evidence, nil
}

// query embeds the text and over-fetches filtered candidates above the
// similarity threshold.
func (e *Engine) query(ctx context.Context, collection, queryText string, filter store.Filter, k int) ([]store.Candidate, error) {
	if k <= 0 {
		k = e.cfg.DefaultK
	}

	vector, err := e.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch: the store applies filters and similarity jointly, but
	// dedup and threshold trimming below need headroom to still fill k.
	overfetch := e.cfg.OverfetchFactor
	if overfetch < 1 {
		overfetch = 2
	}
	candidates, err := e.store.Query(ctx, collection, vector, filter, overfetch*k)
	if err != nil {
		return nil, fmt.Errorf("query knowledge store: %w", err)
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if c.Similarity >= e.cfg.MinSimilarity {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

// rank deduplicates by id keeping the highest-similarity occurrence, then
// sorts deterministically: similarity desc, stored relevance desc, most
// recent indexed_at, id asc as the final total-order key.
func rank(candidates []store.Candidate, k int) []store.Candidate {
	best := make(map[string]store.Candidate, len(candidates))
	for _, c := range candidates {
		if prev, seen := best[c.ID]; !seen || c.Similarity > prev.Similarity {
			best[c.ID] = c
		}
	}

	unique := make([]store.Candidate, 0, len(best))
	for _, c := range best {
		unique = append(unique, c)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		ra, rb := relevanceOf(a), relevanceOf(b)
		if ra != rb {
			return ra > rb
		}
		ia, ib := indexedAtOf(a), indexedAtOf(b)
		if !ia.Equal(ib) {
			return ia.After(ib)
		}
		return a.ID < b.ID
	})

	if len(unique) > k {
		unique = unique[:k]
	}
	return unique
}

// bumpUsage increments usage counters for returned records. Best-effort:
// the ranked evidence is the contract, the counter is bookkeeping.
func (e *Engine) bumpUsage(ctx context.Context, evidence []Evidence) {
	for _, ev := range evidence {
		patch := map[string]any{format.FieldUsageCount: ev.Record.UsageCount + 1}
		if err := e.store.SetPayload(ctx, e.articleCollection, ev.Record.RecordID, patch); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: usage count update failed for %s: %v\n", ev.Record.RecordID, err)
			return
		}
	}
}

func relevanceOf(c store.Candidate) float64 {
	f, _ := c.Payload["relevance_score"].(float64)
	return f
}

func indexedAtOf(c store.Candidate) time.Time {
	// RFC3339Nano trims trailing fraction zeros, so the stored strings do
	// not order lexicographically; compare parsed instants. An unparsable
	// or missing value sorts last as the zero time.
	s, _ := c.Payload["indexed_at"].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
