package analyzer

import (
	"strings"
	"testing"
)

func testMarket() Market {
	return Market{
		RegionName:    "Austin",
		RegionAliases: []string{"ATX"},
		StateName:     "Texas",
		StateAbbr:     "TX",
		SubRegions:    []string{"Mueller", "Hyde Park", "Zilker"},
		Landmarks:     []string{"Lady Bird Lake", "Barton Springs"},
		BusinessName:  "Hilltop Realty",
		Keywords:      []string{"homes for sale", "real estate"},
	}
}

func TestAnalyze_Structure(t *testing.T) {
	content := `
	<h1>Main Heading</h1>
	<h2>Section One</h2>
	<h3>Subsection</h3>
	<p>Some text with an <a href="/listings">internal link</a> and an
	<a href="https://example.org/data">external link</a> and an
	<a href="#top">anchor</a>.</p>
	<img src="a.jpg" alt="A house">
	<img src="b.jpg">
	<script type="application/ld+json">{"@type": "Article"}</script>`

	a := New(testMarket(), "www.hilltoprealty.com")
	signals := a.Analyze(Input{Title: "Test", Content: content})

	if signals.H1Count != 1 {
		t.Errorf("H1Count = %d, want 1", signals.H1Count)
	}
	if signals.SectionHeadingCount != 2 {
		t.Errorf("SectionHeadingCount = %d, want 2", signals.SectionHeadingCount)
	}
	if signals.InternalLinks != 1 {
		t.Errorf("InternalLinks = %d, want 1", signals.InternalLinks)
	}
	if signals.ExternalLinks != 1 {
		t.Errorf("ExternalLinks = %d, want 1", signals.ExternalLinks)
	}
	if signals.ImageCount != 2 || signals.ImagesWithAlt != 1 {
		t.Errorf("images = %d with alt %d, want 2/1", signals.ImageCount, signals.ImagesWithAlt)
	}
	if !signals.HasStructuredMarkup {
		t.Error("expected structured markup to be detected")
	}
}

func TestAnalyze_KeywordDensity(t *testing.T) {
	// 100 words, keyword "real estate" (2 words) appearing 3 times
	// -> 6/100 = 6% density.
	var b strings.Builder
	b.WriteString("<p>")
	for i := 0; i < 94; i++ {
		b.WriteString("word ")
	}
	b.WriteString("real estate real estate real estate</p>")

	a := New(testMarket(), "")
	signals := a.Analyze(Input{Content: b.String(), PrimaryKeyword: "real estate"})

	if signals.WordCount != 100 {
		t.Fatalf("WordCount = %d, want 100", signals.WordCount)
	}
	if signals.KeywordOccurrences != 3 {
		t.Errorf("KeywordOccurrences = %d, want 3", signals.KeywordOccurrences)
	}
	if signals.KeywordDensity < 5.9 || signals.KeywordDensity > 6.1 {
		t.Errorf("KeywordDensity = %.2f, want ~6.0", signals.KeywordDensity)
	}
}

func TestAnalyze_LocalityMentions(t *testing.T) {
	content := `<p>Austin is booming. Austin buyers love Mueller and Hyde Park.
	The median price hit $550,000, up 4.2% in Texas. Visit us near Lady Bird Lake
	or call (512) 555-0100.</p>`

	a := New(testMarket(), "")
	signals := a.Analyze(Input{Title: "Austin Market Update", Content: content})

	if signals.RegionMentions != 3 { // 2 in body + 1 in title
		t.Errorf("RegionMentions = %d, want 3", signals.RegionMentions)
	}
	if signals.SubRegionMentions != 2 {
		t.Errorf("SubRegionMentions = %d, want 2", signals.SubRegionMentions)
	}
	if signals.StateMentions != 1 {
		t.Errorf("StateMentions = %d, want 1", signals.StateMentions)
	}
	if signals.PriceMentions != 1 {
		t.Errorf("PriceMentions = %d, want 1", signals.PriceMentions)
	}
	if signals.MarketDataMentions < 2 { // "median price" + "4.2%"
		t.Errorf("MarketDataMentions = %d, want >= 2", signals.MarketDataMentions)
	}
	if signals.LandmarkMentions != 1 {
		t.Errorf("LandmarkMentions = %d, want 1", signals.LandmarkMentions)
	}
	if signals.BusinessSignals != 1 { // phone only
		t.Errorf("BusinessSignals = %d, want 1", signals.BusinessSignals)
	}
}

func TestAnalyze_StateAbbrIsCaseSensitive(t *testing.T) {
	a := New(testMarket(), "")
	signals := a.Analyze(Input{Content: "<p>Context and text should not match, but TX should.</p>"})
	if signals.StateMentions != 1 {
		t.Errorf("StateMentions = %d, want 1 (only the literal TX)", signals.StateMentions)
	}
}

func TestAnalyze_EmptyContent(t *testing.T) {
	a := New(testMarket(), "")
	signals := a.Analyze(Input{})
	if signals.WordCount != 0 || signals.H1Count != 0 {
		t.Errorf("empty input should produce zero signals, got %+v", signals)
	}
}
