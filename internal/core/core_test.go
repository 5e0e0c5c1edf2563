package core

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Austin Market Update", "austin-market-update"},
		{"punctuation stripped", "Mueller, Hyde Park & Round Rock: A Guide!", "mueller-hyde-park-round-rock-a-guide"},
		{"whitespace collapsed", "  First-Time   Buyer\tGuide  ", "first-time-buyer-guide"},
		{"existing hyphens collapsed", "5-year -- outlook", "5-year-outlook"},
		{"leading trailing hyphens trimmed", "(2026) Housing Forecast?", "2026-housing-forecast"},
		{"numbers kept", "Top 10 Neighborhoods in 78704", "top-10-neighborhoods-in-78704"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	title := "Austin Spring Market Preview"
	first := Slugify(title)
	for i := 0; i < 5; i++ {
		if got := Slugify(title); got != first {
			t.Fatalf("Slugify not deterministic: %q vs %q", got, first)
		}
	}
}
