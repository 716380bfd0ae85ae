// Package qa synthesizes question/answer pairs from accepted articles.
package qa

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avoskres/defectbase/internal/article"
	"github.com/avoskres/defectbase/internal/judge"
	"github.com/avoskres/defectbase/internal/model"
)

// Synthesizer generates QA pairs with one judgment call per article,
// grounding the answers on the already-extracted solution items so the
// two stages stay consistent by construction.
type Synthesizer struct {
	provider judge.Provider
	cfg      model.QAConfig
}

// New creates a synthesizer.
func New(provider judge.Provider, cfg model.QAConfig) *Synthesizer {
	return &Synthesizer{provider: provider, cfg: cfg}
}

type rawBatch struct {
	Pairs []rawPair `json:"qa_pairs"`
}

type rawPair struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Synthesize returns the validated pairs for an article whose extraction
// produced a problem category. Pairs below the length floor are dropped
// without aborting the batch; the caller decides what zero survivors mean.
func (s *Synthesizer) Synthesize(ctx context.Context, art model.RawArticle, meta model.ExtractedMetadata) ([]model.QAPair, error) {
	body := article.VisibleText(art.BodyText)

	var batch rawBatch
	if err := judge.Judge(ctx, s.provider, s.request(art, body, meta), &batch); err != nil {
		return nil, fmt.Errorf("synthesize qa: %w", err)
	}

	var pairs []model.QAPair
	for _, raw := range batch.Pairs {
		question := strings.TrimSpace(raw.Question)
		answer := strings.TrimSpace(raw.Answer)
		if utf8.RuneCountInString(question) < s.cfg.MinQuestionRunes {
			continue
		}
		if utf8.RuneCountInString(answer) < s.cfg.MinAnswerRunes {
			continue
		}

		confidence := raw.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = meta.Confidence
		}

		pairs = append(pairs, model.QAPair{
			Question:        question,
			Answer:          answer,
			ProblemCategory: meta.Category(),
			PrinterModels:   meta.PrinterModels,
			Materials:       meta.Materials,
			Confidence:      confidence,
		})
	}

	return pairs, nil
}

func (s *Synthesizer) request(art model.RawArticle, body string, meta model.ExtractedMetadata) judge.Request {
	var grounding strings.Builder
	for _, item := range meta.SolutionItems {
		fmt.Fprintf(&grounding, "- %s = %s", item.Parameter, item.Value)
		if item.Unit != "" {
			fmt.Fprintf(&grounding, " %s", item.Unit)
		}
		if item.Description != "" {
			fmt.Fprintf(&grounding, " (%s)", item.Description)
		}
		grounding.WriteString("\n")
	}
	if grounding.Len() == 0 {
		grounding.WriteString("(none extracted)\n")
	}

	return judge.Request{
		Task:   "qa",
		System: "You are a knowledge base librarian for 3D-printing diagnostics. Generate practical questions a user would actually ask. Reply with valid JSON only.",
		Prompt: fmt.Sprintf(`Generate %d-%d question/answer pairs from this article about the "%s" problem. Answers must stay consistent with the extracted solutions below and be self-contained (at least a few sentences).

TITLE: %s

EXTRACTED SOLUTIONS:
%s
BODY (first 4000 characters):
%s

Return ONLY valid JSON:
{
    "qa_pairs": [
        {"question": "...", "answer": "...", "confidence": 0.0-1.0}
    ]
}`, s.cfg.MinPairs, s.cfg.MaxPairs, meta.Category(), art.Title, grounding.String(), truncate(body, 4000)),
	}
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
