package pipeline

import (
	"context"

	"github.com/avoskres/defectbase/internal/model"
	"github.com/avoskres/defectbase/internal/worker"
)

// BatchResult pairs one article's curation outcome with the error that
// aborted its pass, if any. One failed pass never fails the batch.
type BatchResult struct {
	Article model.RawArticle
	Result  *CurationResult
	Err     error
}

// GetError implements worker.Result.
func (r *BatchResult) GetError() error {
	return r.Err
}

type curationJob struct {
	pipeline *Pipeline
	article  model.RawArticle
	parent   context.Context
}

// Execute implements worker.Job.
func (j *curationJob) Execute(ctx context.Context) worker.Result {
	// The pool's context governs shutdown; the caller's governs deadlines.
	runCtx := j.parent
	if runCtx.Err() == nil && ctx.Err() != nil {
		runCtx = ctx
	}
	result, err := j.pipeline.Curate(runCtx, j.article)
	return &BatchResult{Article: j.article, Result: result, Err: err}
}

// CurateBatch curates articles in parallel, bounded by the configured
// worker count. Within each pass the stages stay strictly sequential.
func (p *Pipeline) CurateBatch(ctx context.Context, articles []model.RawArticle) []*BatchResult {
	pool := worker.NewPool(p.cfg.Concurrency.CurationWorkers)
	pool.Start()

	for _, art := range articles {
		pool.Submit(&curationJob{pipeline: p, article: art, parent: ctx})
	}

	raw := pool.Wait()
	results := make([]*BatchResult, 0, len(raw))
	for _, r := range raw {
		if br, ok := r.(*BatchResult); ok {
			results = append(results, br)
		}
	}
	return results
}
