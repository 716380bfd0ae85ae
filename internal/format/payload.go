package format

import (
	"time"

	"github.com/avoskres/defectbase/internal/model"
)

// Payload field names shared by the curation writer and the retrieval
// reader. Filters from session state address these exact keys.
const (
	FieldRecordID        = "record_id"
	FieldQAID            = "qa_id"
	FieldProblemCategory = "problem_category"
	FieldPrinterModels   = "printer_models"
	FieldMaterials       = "materials"
	FieldPrintStage      = "print_stage"
	FieldUsageCount      = "usage_count"
)

// RecordPayload flattens a knowledge record into the store payload
// attached to its vector.
func RecordPayload(rec model.KnowledgeRecord) map[string]any {
	items := make([]map[string]any, len(rec.SolutionItems))
	for i, item := range rec.SolutionItems {
		items[i] = map[string]any{
			"parameter":   item.Parameter,
			"value":       item.Value,
			"unit":        item.Unit,
			"description": item.Description,
		}
	}
	return map[string]any{
		FieldRecordID:        rec.RecordID,
		"source_locator":     rec.SourceLocator,
		"title":              rec.Title,
		"body_text":          rec.BodyText,
		"section_label":      rec.SectionLabel,
		"relevance_score":    rec.RelevanceScore,
		FieldProblemCategory: rec.ProblemCategory,
		FieldPrinterModels:   rec.PrinterModels,
		FieldMaterials:       rec.Materials,
		"symptoms":           rec.Symptoms,
		"solution_items":     items,
		FieldPrintStage:      rec.PrintStage,
		"confidence":         rec.Confidence,
		"indexed_at":         rec.IndexedAt.Format(time.RFC3339Nano),
		FieldUsageCount:      rec.UsageCount,
	}
}

// QAPayload flattens a QA record into its store payload.
func QAPayload(rec model.QARecord) map[string]any {
	return map[string]any{
		FieldQAID:            rec.QAID,
		"question":           rec.Question,
		"answer":             rec.Answer,
		FieldProblemCategory: rec.ProblemCategory,
		FieldPrinterModels:   rec.PrinterModels,
		FieldMaterials:       rec.Materials,
		"source_locator":     rec.SourceLocator,
		"confidence":         rec.Confidence,
		"created_at":         rec.CreatedAt.Format(time.RFC3339Nano),
	}
}

// RecordFromPayload rebuilds a knowledge record from a store payload.
// Payloads come back as untyped JSON maps; anomalies degrade to zero
// values the same way extraction validation does.
func RecordFromPayload(payload map[string]any) model.KnowledgeRecord {
	rec := model.KnowledgeRecord{
		RecordID:        asString(payload[FieldRecordID]),
		SourceLocator:   asString(payload["source_locator"]),
		Title:           asString(payload["title"]),
		BodyText:        asString(payload["body_text"]),
		SectionLabel:    asString(payload["section_label"]),
		RelevanceScore:  asFloat(payload["relevance_score"]),
		ProblemCategory: asString(payload[FieldProblemCategory]),
		PrinterModels:   asStrings(payload[FieldPrinterModels]),
		Materials:       asStrings(payload[FieldMaterials]),
		Symptoms:        asStrings(payload["symptoms"]),
		PrintStage:      asStrings(payload[FieldPrintStage]),
		Confidence:      asFloat(payload["confidence"]),
		UsageCount:      int(asFloat(payload[FieldUsageCount])),
	}

	if t, err := time.Parse(time.RFC3339Nano, asString(payload["indexed_at"])); err == nil {
		rec.IndexedAt = t
	}

	if items, ok := payload["solution_items"].([]any); ok {
		for _, raw := range items {
			item, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			rec.SolutionItems = append(rec.SolutionItems, model.SolutionItem{
				Parameter:   asString(item["parameter"]),
				Value:       asString(item["value"]),
				Unit:        asString(item["unit"]),
				Description: asString(item["description"]),
			})
		}
	}

	return rec
}

// QAFromPayload rebuilds a QA record from a store payload.
func QAFromPayload(payload map[string]any) model.QARecord {
	rec := model.QARecord{
		QAID:            asString(payload[FieldQAID]),
		Question:        asString(payload["question"]),
		Answer:          asString(payload["answer"]),
		ProblemCategory: asString(payload[FieldProblemCategory]),
		PrinterModels:   asStrings(payload[FieldPrinterModels]),
		Materials:       asStrings(payload[FieldMaterials]),
		SourceLocator:   asString(payload["source_locator"]),
		Confidence:      asFloat(payload["confidence"]),
	}
	if t, err := time.Parse(time.RFC3339Nano, asString(payload["created_at"])); err == nil {
		rec.CreatedAt = t
	}
	return rec
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		// Round-trips inside the process keep the original type.
		if direct, ok := v.([]string); ok {
			return direct
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
