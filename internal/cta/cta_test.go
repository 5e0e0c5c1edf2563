package cta

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSelect_KeywordScoring(t *testing.T) {
	s := NewSelector("https://www.hilltoprealty.com")

	tests := []struct {
		name  string
		topic Topic
		want  string
	}{
		{
			name:  "seller topic picks valuation",
			topic: Topic{Title: "When to Sell Your Home", Description: "timing equity and appraisal"},
			want:  TypeValuation,
		},
		{
			name:  "school topic picks schools",
			topic: Topic{Title: "Best School Districts for Families", Keywords: []string{"education"}},
			want:  TypeSchools,
		},
		{
			name:  "market report picks contact",
			topic: Topic{Title: "Housing Market Trends Report", Description: "forecast and analysis"},
			want:  TypeContact,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Select(tc.topic)
			if got.Type != tc.want {
				t.Errorf("Select = %s, want %s", got.Type, tc.want)
			}
		})
	}
}

func TestSelect_TopicTagOutweighsKeyword(t *testing.T) {
	s := NewSelector("")
	// "listing" keyword (+10 search) vs "selling" topic tag (+20 valuation).
	got := s.Select(Topic{Title: "Selling a home with an active listing"})
	if got.Type != TypeValuation {
		t.Errorf("tag match should outweigh keyword match, got %s", got.Type)
	}
}

func TestSelect_PreferredTypeWins(t *testing.T) {
	s := NewSelector("")
	got := s.Select(Topic{
		Title:         "When to Sell Your Home",
		PreferredType: TypeContact,
	})
	if got.Type != TypeContact {
		t.Errorf("preferred type ignored, got %s", got.Type)
	}
}

func TestSelect_FallbackChain(t *testing.T) {
	s := NewSelector("")

	tests := []struct {
		title string
		want  string
	}{
		{"First-Time Homeowner Mistakes", TypeSearch},
		{"Raising Kids Downtown", TypeSchools},
		{"Why Invest Here", TypeContact},
		{"Completely Unrelated Topic", TypeSearch}, // universal default
	}
	for _, tc := range tests {
		got := s.Select(Topic{Title: tc.title})
		if got.Type != tc.want {
			t.Errorf("Select(%q) = %s, want %s", tc.title, got.Type, tc.want)
		}
	}
}

func TestLoadOverrides_ReplacesAndAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctas.yaml")
	overrides := `templates:
  - type: search
    title: Custom Search Title
    button_text: Go
    button_url: /search
    keywords: ["buy"]
  - type: newsletter
    title: Join the Newsletter
    button_text: Subscribe
    button_url: /newsletter
    keywords: ["newsletter"]
`
	if err := os.WriteFile(path, []byte(overrides), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSelector("")
	if err := s.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}

	search, ok := s.byType(TypeSearch)
	if !ok || search.Title != "Custom Search Title" {
		t.Errorf("search template not replaced: %+v", search)
	}
	if _, ok := s.byType("newsletter"); !ok {
		t.Error("new template type was not appended")
	}
	if got := s.Select(Topic{Title: "Our weekly newsletter digest"}); got.Type != "newsletter" {
		t.Errorf("appended template not selectable, got %s", got.Type)
	}
}

func TestRender_AbsoluteButtonURL(t *testing.T) {
	s := NewSelector("https://www.hilltoprealty.com/")
	template, _ := s.byType(TypeSearch)

	out := s.Render(template)
	if !strings.Contains(out, `href="https://www.hilltoprealty.com/listings"`) {
		t.Errorf("button URL not absolute: %s", out)
	}
	if !strings.Contains(out, `class="cta cta-search"`) {
		t.Errorf("missing type class: %s", out)
	}
	if !strings.Contains(out, "<h3>Find Your Next Home</h3>") {
		t.Errorf("missing title: %s", out)
	}
}

func TestRender_EscapesContent(t *testing.T) {
	s := NewSelector("")
	out := s.Render(builtinTemplates[0])
	if strings.Contains(out, "<script") {
		t.Fatal("unexpected script tag")
	}

	custom := builtinTemplates[0]
	custom.Title = `<script>alert("x")</script>`
	out = s.Render(custom)
	if strings.Contains(out, "<script>") {
		t.Errorf("title not escaped: %s", out)
	}
}
