// Package metadata extracts structured facts from gate-accepted articles.
// The judgment reply is strictly validated locally: shape anomalies coerce
// to empty values, and no field is ever invented that the judgment did not
// return.
package metadata

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avoskres/defectbase/internal/article"
	"github.com/avoskres/defectbase/internal/judge"
	"github.com/avoskres/defectbase/internal/model"
)

// Extractor pulls the structured field set out of an article via one
// judgment call.
type Extractor struct {
	provider judge.Provider
}

// New creates an extractor.
func New(provider judge.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// rawFacts is the untrusted wire shape. Every field is `any`: an LLM may
// return a string where a list belongs or vice versa, and each anomaly must
// degrade to absence, not to an error or a guess.
type rawFacts struct {
	ProblemCategory any           `json:"problem_category"`
	PrinterModels   any           `json:"printer_models"`
	Materials       any           `json:"materials"`
	Symptoms        any           `json:"symptoms"`
	SolutionItems   []rawSolution `json:"solution_items"`
	PrintStage      any           `json:"print_stage"`
	Confidence      any           `json:"confidence"`
}

type rawSolution struct {
	Parameter   any `json:"parameter"`
	Value       any `json:"value"`
	Unit        any `json:"unit"`
	Description any `json:"description"`
}

// Extract returns the validated metadata for a gate-accepted article.
// A judgment service failure surfaces as an error (the pass is aborted);
// a parsable-but-empty judgment yields empty metadata.
func (e *Extractor) Extract(ctx context.Context, art model.RawArticle) (model.ExtractedMetadata, error) {
	body := article.VisibleText(art.BodyText)

	var raw rawFacts
	if err := judge.Judge(ctx, e.provider, e.request(art, body), &raw); err != nil {
		return model.ExtractedMetadata{}, fmt.Errorf("extract metadata: %w", err)
	}

	return validate(raw), nil
}

// validate coerces the untrusted shape into the invariant-holding model.
func validate(raw rawFacts) model.ExtractedMetadata {
	meta := model.ExtractedMetadata{
		PrinterModels: toStringSet(raw.PrinterModels),
		Materials:     toStringSet(raw.Materials),
		Symptoms:      toStringList(raw.Symptoms),
		PrintStage:    toStringList(raw.PrintStage),
		Confidence:    toScore(raw.Confidence),
	}

	if category, ok := toNonEmptyString(raw.ProblemCategory); ok {
		meta.ProblemCategory = &category
	}

	for _, item := range raw.SolutionItems {
		parameter, okP := toNonEmptyString(item.Parameter)
		value, okV := toNonEmptyString(item.Value)
		if !okP || !okV {
			// Partial success: an item without both a parameter and a
			// value carries no actionable content and is dropped.
			continue
		}
		unit, _ := toNonEmptyString(item.Unit)
		description, _ := toNonEmptyString(item.Description)
		meta.SolutionItems = append(meta.SolutionItems, model.SolutionItem{
			Parameter:   parameter,
			Value:       value,
			Unit:        unit,
			Description: description,
		})
	}

	return meta
}

func (e *Extractor) request(art model.RawArticle, body string) judge.Request {
	return judge.Request{
		Task:   "extraction",
		System: "You are a knowledge base librarian for 3D-printing diagnostics. Extract only facts stated in the text. Reply with valid JSON only.",
		Prompt: fmt.Sprintf(`Extract structured facts from this 3D-printing article. Leave out anything the text does not state: use null for an unknown category and [] for empty lists. Never guess.

TITLE: %s

BODY (first 4000 characters):
%s

Return ONLY valid JSON:
{
    "problem_category": "stringing" or null,
    "printer_models": ["Ender-3"] or [],
    "materials": ["PLA"] or [],
    "symptoms": ["symptom1"] or [],
    "solution_items": [
        {"parameter": "retraction_distance", "value": "6", "unit": "mm", "description": "why this helps"}
    ] or [],
    "print_stage": ["first_layer"] or [],
    "confidence": 0.0-1.0
}`, art.Title, truncate(body, 4000)),
	}
}

// --- coercion helpers ---

func toNonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return "", false
	}
	return s, true
}

func toStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := toNonEmptyString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func toStringSet(v any) []string {
	list := toStringList(v)
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, s := range list {
		key := strings.ToLower(s)
		if !seen[key] {
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

func toScore(v any) float64 {
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
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
