package model

import "time"

// KnowledgeRecord is a persisted article-form knowledge unit.
// RecordID is a stable, deterministic function of the problem category and
// title, so re-curating an unchanged source upserts instead of duplicating.
type KnowledgeRecord struct {
	RecordID      string    `json:"record_id"`
	SourceLocator string    `json:"source_locator"`
	Title         string    `json:"title"`
	BodyText      string    `json:"body_text"`
	SectionLabel  string    `json:"section_label,omitempty"`

	RelevanceScore float64 `json:"relevance_score"`

	ProblemCategory string         `json:"problem_category"`
	PrinterModels   []string       `json:"printer_models"`
	Materials       []string       `json:"materials"`
	Symptoms        []string       `json:"symptoms"`
	SolutionItems   []SolutionItem `json:"solution_items"`
	PrintStage      []string       `json:"print_stage"`
	Confidence      float64        `json:"confidence"`

	IndexedAt  time.Time `json:"indexed_at"`
	UsageCount int       `json:"usage_count"` // 0 at creation; the only field mutated after indexing
}

// QARecord is a persisted question/answer knowledge unit. QA IDs are
// intentionally unique per synthesis run: regenerated pairs for the same
// source may legitimately vary, so they never collide with earlier runs.
type QARecord struct {
	QAID            string    `json:"qa_id"`
	Question        string    `json:"question"`
	Answer          string    `json:"answer"`
	ProblemCategory string    `json:"problem_category,omitempty"`
	PrinterModels   []string  `json:"printer_models"`
	Materials       []string  `json:"materials"`
	SourceLocator   string    `json:"source_locator"` // Back-reference to the originating article
	Confidence      float64   `json:"confidence"`
	CreatedAt       time.Time `json:"created_at"`
}
