package gate

import "strings"

// SignalFunc decides whether body text carries actionable guidance. The
// vocabulary heuristic is locale-specific, so the predicate is injected
// rather than baked into the gate's control flow.
type SignalFunc func(text string) bool

// DefaultSignalTerms is the built-in vocabulary of actionable terms:
// unit markers, imperative verbs, and parameter names that solution-bearing
// articles use and purely descriptive ones do not.
var DefaultSignalTerms = []string{
	// Parameter names
	"temperature", "retraction", "speed", "flow", "nozzle", "bed",
	"cooling", "fan", "layer height", "z-offset", "infill", "extrusion",
	// Unit markers
	"mm/s", "°c", "celsius", " mm", "percent", "%",
	// Imperative verbs
	"set ", "reduce", "increase", "lower", "raise", "calibrate",
	"adjust", "enable", "disable", "tighten", "level", "dry ",
}

// NewTermCountSignal builds a predicate that passes when at least minTerms
// distinct vocabulary entries occur in the text.
func NewTermCountSignal(terms []string, minTerms int) SignalFunc {
	if len(terms) == 0 {
		terms = DefaultSignalTerms
	}
	if minTerms <= 0 {
		minTerms = 3
	}
	return func(text string) bool {
		return countTerms(text, terms) >= minTerms
	}
}

// countTerms counts distinct vocabulary entries present in text.
func countTerms(text string, terms []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			count++
		}
	}
	return count
}
