// Package pipeline orchestrates one curation pass:
// Gate -> Extract -> Synthesize -> Format -> Store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/avoskres/defectbase/internal/embed"
	"github.com/avoskres/defectbase/internal/format"
	"github.com/avoskres/defectbase/internal/gate"
	"github.com/avoskres/defectbase/internal/judge"
	"github.com/avoskres/defectbase/internal/metadata"
	"github.com/avoskres/defectbase/internal/model"
	"github.com/avoskres/defectbase/internal/qa"
	"github.com/avoskres/defectbase/internal/store"
)

// Rejection stages. Every rejection carries the stage that produced it so
// the caller can tell a gate failure from a classification failure.
const (
	StageGate       = "gate"
	StageExtraction = "extraction"
	StageQA         = "qa"
)

// Pipeline runs curation passes. Each pass is an independent, stateless
// unit of work; passes for different articles may run fully in parallel.
type Pipeline struct {
	gate        *gate.Gate
	extractor   *metadata.Extractor
	synthesizer *qa.Synthesizer
	embedder    embed.Embedder
	store       store.Store
	cfg         *model.Config
	now         func() time.Time
}

// New creates a pipeline. The store handle is injected here and passed to
// nothing else; there is no process-wide store state.
func New(provider judge.Provider, embedder embed.Embedder, st store.Store, cfg *model.Config) *Pipeline {
	return &Pipeline{
		gate:        gate.New(provider, cfg.Gate),
		extractor:   metadata.New(provider),
		synthesizer: qa.New(provider, cfg.QA),
		embedder:    embedder,
		store:       st,
		cfg:         cfg,
		now:         time.Now,
	}
}

// CurationResult is the outcome of one pass. A rejection is a legitimate
// business decision (Accepted=false plus a stage-attributed reason), not
// an error; errors are reserved for service unavailability.
type CurationResult struct {
	SourceLocator string               `json:"source_locator"`
	Accepted      bool                 `json:"accepted"`
	Stage         string               `json:"stage,omitempty"`  // Stage that rejected, empty when accepted
	Reason        string               `json:"reason,omitempty"` // Human-readable rejection reason
	Verdict       model.GateVerdict    `json:"verdict"`
	Record        *model.KnowledgeRecord `json:"record,omitempty"`
	QARecords     []model.QARecord     `json:"qa_records,omitempty"`
}

// EnsureCollections creates the article and QA collections if missing.
func (p *Pipeline) EnsureCollections(ctx context.Context) error {
	dim := p.embedder.Dimension()
	if err := p.store.EnsureCollection(ctx, p.cfg.Store.ArticleCollection, dim); err != nil {
		return fmt.Errorf("ensure article collection: %w", err)
	}
	if err := p.store.EnsureCollection(ctx, p.cfg.Store.QACollection, dim); err != nil {
		return fmt.Errorf("ensure qa collection: %w", err)
	}
	return nil
}

// Curate runs the full pass for one article. A ServiceUnavailable from any
// stage aborts only this pass and surfaces as an error; previously
// persisted records are untouched.
func (p *Pipeline) Curate(ctx context.Context, art model.RawArticle) (*CurationResult, error) {
	result := &CurationResult{SourceLocator: art.SourceLocator}

	// 1. Content gate.
	result.Verdict = p.gate.Evaluate(ctx, art)
	if !result.Verdict.Accepted {
		result.Stage = StageGate
		result.Reason = strings.Join(result.Verdict.Issues, "; ")
		if result.Reason == "" {
			result.Reason = "rejected by content gate"
		}
		return result, nil
	}

	// 2. Metadata extraction. A shape-invalid judgment degrades to empty
	// metadata locally; only unavailability aborts the pass.
	meta, err := p.extractor.Extract(ctx, art)
	if err != nil {
		if !errors.Is(err, judge.ErrParse) {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "Warning: extraction judgment unparsable for %s: %v\n", art.SourceLocator, err)
		meta = model.ExtractedMetadata{}
	}
	if meta.ProblemCategory == nil {
		// Classification failure is a property of the extraction stage's
		// judgment, distinct from the gate's relevance/quality checks.
		result.Stage = StageExtraction
		result.Reason = "could not classify problem"
		return result, nil
	}

	// 3. QA synthesis. Same local policy for unparsable batches.
	pairs, err := p.synthesizer.Synthesize(ctx, art, meta)
	if err != nil {
		if !errors.Is(err, judge.ErrParse) {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "Warning: qa judgment unparsable for %s: %v\n", art.SourceLocator, err)
		pairs = nil
	}
	if len(pairs) == 0 {
		// QA presence is a hard admission requirement, not an enrichment.
		result.Stage = StageQA
		result.Reason = "no usable QA pairs"
		return result, nil
	}

	// 4. Format.
	now := p.now()
	record := format.FormatArticle(art, meta, result.Verdict, now)
	qaRecords := make([]model.QARecord, len(pairs))
	for i, pair := range pairs {
		qaRecords[i] = format.FormatQA(pair, art.SourceLocator, now)
	}

	// 5. Store. Upserts are idempotent by derived id.
	if err := p.index(ctx, art, record, qaRecords); err != nil {
		return nil, err
	}

	result.Accepted = true
	result.Record = &record
	result.QARecords = qaRecords
	return result, nil
}

func (p *Pipeline) index(ctx context.Context, art model.RawArticle, record model.KnowledgeRecord, qaRecords []model.QARecord) error {
	vector, err := p.embedder.Embed(ctx, art.Title+"\n"+art.BodyText)
	if err != nil {
		return fmt.Errorf("embed article: %w", err)
	}
	err = p.store.Upsert(ctx, p.cfg.Store.ArticleCollection, []store.Point{{
		ID:      record.RecordID,
		Vector:  vector,
		Payload: format.RecordPayload(record),
	}})
	if err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	points := make([]store.Point, 0, len(qaRecords))
	for _, rec := range qaRecords {
		qaVector, err := p.embedder.Embed(ctx, rec.Question+"\n"+rec.Answer)
		if err != nil {
			return fmt.Errorf("embed qa pair: %w", err)
		}
		points = append(points, store.Point{
			ID:      rec.QAID,
			Vector:  qaVector,
			Payload: format.QAPayload(rec),
		})
	}
	if err := p.store.Upsert(ctx, p.cfg.Store.QACollection, points); err != nil {
		return fmt.Errorf("upsert qa records: %w", err)
	}
	return nil
}
