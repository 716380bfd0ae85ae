package format

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/avoskres/defectbase/internal/model"
)

// The store returns payloads as generic JSON maps: strings become strings,
// numbers float64, lists []any. The round trip below goes through an actual
// JSON encode/decode to exercise that exact shape.
func TestRecordPayloadRoundTripThroughJSON(t *testing.T) {
	original := model.KnowledgeRecord{
		RecordID:        "stringing--fixing-stringing-on-pla",
		SourceLocator:   "https://example.com/stringing",
		Title:           "Fixing Stringing on PLA",
		BodyText:        "Increase retraction distance to 6 mm.",
		SectionLabel:    "troubleshooting",
		RelevanceScore:  0.9,
		ProblemCategory: "stringing",
		PrinterModels:   []string{"Ender-3"},
		Materials:       []string{"PLA"},
		Symptoms:        []string{"thin wisps between parts"},
		SolutionItems: []model.SolutionItem{
			{Parameter: "retraction_distance", Value: "6", Unit: "mm", Description: "pulls filament back"},
		},
		PrintStage: []string{"travel"},
		Confidence: 0.8,
		IndexedAt:  time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		UsageCount: 7,
	}

	encoded, err := json.Marshal(RecordPayload(original))
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		t.Fatal(err)
	}

	got := RecordFromPayload(payload)

	if got.RecordID != original.RecordID {
		t.Errorf("record id = %q", got.RecordID)
	}
	if got.RelevanceScore != original.RelevanceScore {
		t.Errorf("relevance = %v", got.RelevanceScore)
	}
	if len(got.SolutionItems) != 1 || got.SolutionItems[0] != original.SolutionItems[0] {
		t.Errorf("solution items = %+v", got.SolutionItems)
	}
	if !got.IndexedAt.Equal(original.IndexedAt) {
		t.Errorf("indexed_at = %v, want %v", got.IndexedAt, original.IndexedAt)
	}
	if got.UsageCount != 7 {
		t.Errorf("usage count = %d", got.UsageCount)
	}
	if len(got.PrinterModels) != 1 || got.PrinterModels[0] != "Ender-3" {
		t.Errorf("printer models = %v", got.PrinterModels)
	}
}

func TestRecordFromPayloadToleratesAnomalies(t *testing.T) {
	got := RecordFromPayload(map[string]any{
		FieldRecordID:    "x--y",
		"relevance_score": "high",         // wrong type
		"indexed_at":      "not-a-time",   // unparsable
		"solution_items":  []any{"scalar"}, // not an object
		FieldPrinterModels: []string{"Ender-3"}, // in-process round trip keeps []string
	})

	if got.RecordID != "x--y" {
		t.Errorf("record id = %q", got.RecordID)
	}
	if got.RelevanceScore != 0 {
		t.Errorf("relevance = %v, want 0 for wrong type", got.RelevanceScore)
	}
	if !got.IndexedAt.IsZero() {
		t.Errorf("indexed_at = %v, want zero", got.IndexedAt)
	}
	if len(got.SolutionItems) != 0 {
		t.Errorf("solution items = %v, want none", got.SolutionItems)
	}
	if len(got.PrinterModels) != 1 {
		t.Errorf("printer models = %v", got.PrinterModels)
	}
}

func TestQAPayloadRoundTripThroughJSON(t *testing.T) {
	original := model.QARecord{
		QAID:            "qa-0123456789abcdef",
		Question:        "How do I fix stringing?",
		Answer:          "Increase retraction distance.",
		ProblemCategory: "stringing",
		Materials:       []string{"PLA"},
		SourceLocator:   "https://example.com/stringing",
		Confidence:      0.9,
		CreatedAt:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	encoded, err := json.Marshal(QAPayload(original))
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		t.Fatal(err)
	}

	got := QAFromPayload(payload)
	if got.QAID != original.QAID || got.Question != original.Question {
		t.Errorf("round trip lost identity: %+v", got)
	}
	if got.SourceLocator != original.SourceLocator {
		t.Errorf("source locator = %q", got.SourceLocator)
	}
	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}
}
