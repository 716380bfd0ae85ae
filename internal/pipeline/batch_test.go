package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/avoskres/defectbase/internal/judge"
	"github.com/avoskres/defectbase/internal/model"
)

func TestCurateBatchMixedOutcomes(t *testing.T) {
	st := newMemStore()
	p := newTestPipeline(acceptingProvider(), st)

	articles := []model.RawArticle{
		goodArticle(),
		{
			SourceLocator: "https://example.com/short",
			Title:         "Too short",
			BodyText:      "Not enough content.",
		},
	}

	results := p.CurateBatch(context.Background(), articles)
	if len(results) != 2 {
		t.Fatalf("results = %d, want one per article", len(results))
	}

	outcomes := make(map[string]*BatchResult, len(results))
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("article %s errored: %v", r.Article.SourceLocator, r.Err)
			continue
		}
		outcomes[r.Article.SourceLocator] = r
	}

	if accepted := outcomes["https://example.com/stringing"]; accepted == nil || !accepted.Result.Accepted {
		t.Error("good article not admitted")
	}
	if rejected := outcomes["https://example.com/short"]; rejected == nil || rejected.Result.Accepted {
		t.Error("short article not rejected")
	} else if rejected.Result.Stage != StageGate {
		t.Errorf("stage = %q, want gate", rejected.Result.Stage)
	}
}

func TestCurateBatchOneFailureDoesNotFailOthers(t *testing.T) {
	// The provider fails only the extraction task, so the long article's
	// pass aborts while the short one still gets its gate rejection.
	provider := acceptingProvider()
	provider.errs = map[string]error{
		"extraction": fmt.Errorf("%w: down", judge.ErrUnavailable),
	}
	st := newMemStore()
	p := newTestPipeline(provider, st)

	articles := []model.RawArticle{
		goodArticle(),
		{
			SourceLocator: "https://example.com/short",
			Title:         "Too short",
			BodyText:      "Not enough content.",
		},
	}

	results := p.CurateBatch(context.Background(), articles)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	var failed, rejected int
	for _, r := range results {
		switch {
		case r.Err != nil:
			if !errors.Is(r.Err, judge.ErrUnavailable) {
				t.Errorf("unexpected error kind: %v", r.Err)
			}
			failed++
		case !r.Result.Accepted:
			rejected++
		}
	}
	if failed != 1 || rejected != 1 {
		t.Errorf("failed=%d rejected=%d, want 1/1", failed, rejected)
	}
}

func TestCurateBatchEmpty(t *testing.T) {
	p := newTestPipeline(acceptingProvider(), newMemStore())
	if results := p.CurateBatch(context.Background(), nil); len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}

func TestCurateBatchManyArticles(t *testing.T) {
	st := newMemStore()
	p := newTestPipeline(acceptingProvider(), st)

	var articles []model.RawArticle
	for i := 0; i < 12; i++ {
		art := goodArticle()
		art.SourceLocator = fmt.Sprintf("https://example.com/stringing-%d", i)
		art.Title = fmt.Sprintf("Fixing Stringing Variant %d", i)
		articles = append(articles, art)
	}

	results := p.CurateBatch(context.Background(), articles)
	if len(results) != len(articles) {
		t.Fatalf("results = %d, want %d", len(results), len(articles))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Article.SourceLocator, r.Err)
		}
	}
	if st.count("kb_articles") != len(articles) {
		t.Errorf("article points = %d, want %d", st.count("kb_articles"), len(articles))
	}
}
