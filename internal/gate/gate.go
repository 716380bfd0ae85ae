// Package gate implements the multi-stage accept/reject decision over a
// raw article: local length floor, relevance judgment, quality judgment,
// and a local solution-signal heuristic.
package gate

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/avoskres/defectbase/internal/article"
	"github.com/avoskres/defectbase/internal/judge"
	"github.com/avoskres/defectbase/internal/model"
)

// IssueJudgmentUnavailable is recorded when a judgment stage fails to
// return a usable result. The article is rejected; the pipeline continues.
const IssueJudgmentUnavailable = "judgment unavailable"

// Gate evaluates raw articles. Pure over its inputs plus the judgment
// service: no side effects, no state between calls.
type Gate struct {
	provider judge.Provider
	cfg      model.GateConfig
	signal   SignalFunc
}

// New creates a gate with the built-in solution-signal vocabulary
// (overridden by cfg.SignalTerms when set).
func New(provider judge.Provider, cfg model.GateConfig) *Gate {
	return &Gate{
		provider: provider,
		cfg:      cfg,
		signal:   NewTermCountSignal(cfg.SignalTerms, cfg.MinSignalTerms),
	}
}

// WithSignal replaces the solution-signal predicate.
func (g *Gate) WithSignal(fn SignalFunc) *Gate {
	g.signal = fn
	return g
}

// relevanceJudgment mirrors the JSON schema the relevance prompt requests.
// All fields are optional: the reply is model output, not trusted input.
type relevanceJudgment struct {
	Score  float64  `json:"relevance_score"`
	Issues []string `json:"issues"`
}

// qualityJudgment mirrors the quality prompt's schema.
type qualityJudgment struct {
	Score           float64  `json:"quality_score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// Evaluate runs all four stages and returns the verdict. Judgment failures
// fail the owning stage (score 0), never the call itself.
func (g *Gate) Evaluate(ctx context.Context, art model.RawArticle) model.GateVerdict {
	verdict := model.GateVerdict{}

	// Stage 1: length floor. Local short-circuit; no judgment calls are
	// spent on content too short to hold a diagnosis.
	body := article.VisibleText(art.BodyText)
	if utf8.RuneCountInString(body) < g.cfg.MinBodyRunes {
		verdict.Issues = append(verdict.Issues, "content too short")
		return verdict
	}

	// Stage 2: relevance judgment.
	var rel relevanceJudgment
	if err := judge.Judge(ctx, g.provider, g.relevanceRequest(art, body), &rel); err != nil {
		rel = relevanceJudgment{Issues: []string{IssueJudgmentUnavailable}}
	}
	verdict.RelevanceScore = clampScore(rel.Score)
	verdict.Issues = append(verdict.Issues, rel.Issues...)

	// Stage 3: quality judgment, independent of relevance.
	var qual qualityJudgment
	if err := judge.Judge(ctx, g.provider, g.qualityRequest(art, body), &qual); err != nil {
		qual = qualityJudgment{Issues: []string{IssueJudgmentUnavailable}}
	}
	verdict.QualityScore = clampScore(qual.Score)
	verdict.Issues = append(verdict.Issues, qual.Issues...)
	verdict.Recommendations = append(verdict.Recommendations, qual.Recommendations...)

	// Stage 4: solution-signal heuristic. Local and deterministic; catches
	// on-topic articles that carry no actionable guidance without spending
	// a third judgment call.
	verdict.HasSolutionSignal = g.signal(body)
	if !verdict.HasSolutionSignal {
		verdict.Issues = append(verdict.Issues, "no actionable guidance detected")
		verdict.Recommendations = append(verdict.Recommendations, "article needs concrete parameters or corrective steps to be useful")
	}

	verdict.Accepted = verdict.RelevanceScore >= g.cfg.RelevanceThreshold &&
		verdict.QualityScore >= g.cfg.QualityThreshold &&
		verdict.HasSolutionSignal

	return verdict
}

func (g *Gate) relevanceRequest(art model.RawArticle, body string) judge.Request {
	return judge.Request{
		Task:   "relevance",
		System: "You are a strict knowledge base librarian for 3D-printing diagnostics. Judge objectively. Reply with valid JSON only.",
		Prompt: fmt.Sprintf(`Judge whether this article concerns 3D printing: defects and their fixes, printer hardware, materials, slicing parameters, or printing technology.

TITLE: %s
SECTION: %s

BODY (first 2000 characters):
%s

Return ONLY valid JSON:
{
    "relevance_score": 0.0-1.0,
    "issues": ["issue1"] or []
}`, art.Title, art.SectionLabel, truncate(body, 2000)),
	}
}

func (g *Gate) qualityRequest(art model.RawArticle, body string) judge.Request {
	return judge.Request{
		Task:   "quality",
		System: "You are a strict knowledge base librarian for 3D-printing diagnostics. Judge objectively. Reply with valid JSON only.",
		Prompt: fmt.Sprintf(`Score the quality of this article for a diagnostic knowledge base. Consider structure, specificity of parameters, completeness of solutions, and currency.

TITLE: %s

BODY (first 3000 characters):
%s

Return ONLY valid JSON:
{
    "quality_score": 0.0-1.0,
    "issues": ["issue1"] or [],
    "recommendations": ["recommendation1"] or []
}`, art.Title, truncate(body, 3000)),
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// truncate cuts s at n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
