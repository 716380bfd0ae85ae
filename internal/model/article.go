package model

import "time"

// RawArticle is a single article as delivered by the collection front end.
// It lives only for the duration of one curation pass.
type RawArticle struct {
	SourceLocator string    `json:"source_locator"`          // URL or other stable source reference
	Title         string    `json:"title"`                   // Article title
	BodyText      string    `json:"body_text"`               // Plain body text (may carry residual markup)
	SectionLabel  string    `json:"section_label,omitempty"` // Site section the article came from
	PublishedAt   time.Time `json:"published_at,omitempty"`  // Publication date, zero if unknown
}

// GateVerdict is the Content Gate's decision over one raw article.
// Derived from the article plus judgment outputs; never persisted on its own.
type GateVerdict struct {
	Accepted          bool     `json:"accepted"`
	RelevanceScore    float64  `json:"relevance_score"`     // 0.0-1.0
	QualityScore      float64  `json:"quality_score"`       // 0.0-1.0
	HasSolutionSignal bool     `json:"has_solution_signal"` // Local actionable-term heuristic
	Issues            []string `json:"issues,omitempty"`    // Stage-ordered issue texts
	Recommendations   []string `json:"recommendations,omitempty"`
}
