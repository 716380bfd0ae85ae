package gate

import "testing"

func TestTermCountSignal(t *testing.T) {
	signal := NewTermCountSignal(nil, 3)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "three distinct terms pass",
			text: "Reduce the nozzle temperature and increase retraction.",
			want: true,
		},
		{
			name: "repeated term counts once",
			text: "temperature temperature temperature",
			want: false,
		},
		{
			name: "descriptive text has no terms",
			text: "The object detached from the plate and curled upward.",
			want: false,
		},
		{
			name: "case insensitive",
			text: "Set the NOZZLE Temperature to 200 °C.",
			want: true,
		},
		{
			name: "empty",
			text: "",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signal(tt.text); got != tt.want {
				t.Errorf("signal(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestTermCountSignalCustomVocabulary(t *testing.T) {
	signal := NewTermCountSignal([]string{"foo", "bar"}, 2)
	if !signal("foo and bar") {
		t.Error("custom vocabulary not honored")
	}
	if signal("temperature retraction nozzle") {
		t.Error("built-in vocabulary leaked into custom signal")
	}
}

func TestTermCountSignalDefaultsOnZeroMin(t *testing.T) {
	// Zero or negative minimum falls back to requiring 3 terms.
	signal := NewTermCountSignal(nil, 0)
	if signal("temperature only, plus speed") {
		// temperature + speed = 2 distinct terms.
		t.Error("two terms passed a defaulted three-term minimum")
	}
}
