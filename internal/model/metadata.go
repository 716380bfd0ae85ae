package model

// ExtractedMetadata holds structured facts pulled from a gate-accepted
// article. Every field reflects what the judgment actually found: a fact
// absent from the source stays empty here, never a guessed default.
type ExtractedMetadata struct {
	ProblemCategory *string        `json:"problem_category,omitempty"` // nil when no category could be classified
	PrinterModels   []string       `json:"printer_models"`             // Set semantics, deduplicated
	Materials       []string       `json:"materials"`                  // Set semantics, deduplicated
	Symptoms        []string       `json:"symptoms"`
	SolutionItems   []SolutionItem `json:"solution_items"`
	PrintStage      []string       `json:"print_stage"`
	Confidence      float64        `json:"confidence"` // 0.0-1.0
}

// SolutionItem is one actionable recommendation with its parameter.
// Items missing either Parameter or Value are dropped during validation.
type SolutionItem struct {
	Parameter   string `json:"parameter"`
	Value       string `json:"value"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

// Category returns the problem category or "" when unclassified.
func (m ExtractedMetadata) Category() string {
	if m.ProblemCategory == nil {
		return ""
	}
	return *m.ProblemCategory
}

// QAPair is one synthesized question/answer pair.
// Minimum-information contract: question >= 10 runes, answer >= 50 runes.
// Pairs below the floor are dropped, not repaired.
type QAPair struct {
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	ProblemCategory string   `json:"problem_category,omitempty"`
	PrinterModels   []string `json:"printer_models"`
	Materials       []string `json:"materials"`
	Confidence      float64  `json:"confidence"` // 0.0-1.0
}
