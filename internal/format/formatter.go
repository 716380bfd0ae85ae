// Package format normalizes accepted articles and QA pairs into persisted
// records with stable, derived identifiers.
package format

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/avoskres/defectbase/internal/model"
)

// titleSlugTokens is how many normalized title tokens join the category
// in a record id. Enough to keep distinct articles apart, short enough to
// stay human-legible.
const titleSlugTokens = 4

// FormatArticle builds the persisted article record. The record id is a
// deterministic function of problem category and title, so re-curating an
// unchanged source upserts the same id instead of duplicating.
func FormatArticle(art model.RawArticle, meta model.ExtractedMetadata, verdict model.GateVerdict, now time.Time) model.KnowledgeRecord {
	return model.KnowledgeRecord{
		RecordID:        RecordID(meta.Category(), art.Title),
		SourceLocator:   art.SourceLocator,
		Title:           art.Title,
		BodyText:        art.BodyText,
		SectionLabel:    art.SectionLabel,
		RelevanceScore:  verdict.RelevanceScore,
		ProblemCategory: meta.Category(),
		PrinterModels:   meta.PrinterModels,
		Materials:       meta.Materials,
		Symptoms:        meta.Symptoms,
		SolutionItems:   meta.SolutionItems,
		PrintStage:      meta.PrintStage,
		Confidence:      meta.Confidence,
		IndexedAt:       now.UTC(),
		UsageCount:      0,
	}
}

// FormatQA builds one persisted QA record. QA ids hash the question text
// with the creation instant: regenerated pairs may legitimately vary across
// curation passes, so each synthesis run gets fresh ids.
func FormatQA(pair model.QAPair, sourceLocator string, now time.Time) model.QARecord {
	return model.QARecord{
		QAID:            QAID(pair.Question, now),
		Question:        pair.Question,
		Answer:          pair.Answer,
		ProblemCategory: pair.ProblemCategory,
		PrinterModels:   pair.PrinterModels,
		Materials:       pair.Materials,
		SourceLocator:   sourceLocator,
		Confidence:      pair.Confidence,
		CreatedAt:       now.UTC(),
	}
}

// RecordID derives the stable article key: category slug plus the first
// few normalized title tokens.
func RecordID(category, title string) string {
	return Slug(category) + "--" + Slug(firstTokens(title, titleSlugTokens))
}

// QAID derives a per-run-unique QA key from the question content hash and
// the creation instant.
func QAID(question string, now time.Time) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", question, now.UTC().UnixNano())))
	return "qa-" + hex.EncodeToString(hash[:])[:16]
}

// Slug lowercases s and collapses every non-alphanumeric run into a single
// hyphen.
func Slug(s string) string {
	var buf strings.Builder
	lastHyphen := true // Suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			buf.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			buf.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(buf.String(), "-")
}

func firstTokens(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
