// Package analyzer extracts structural and lexical signals from article
// content. It is a pure function over text: no storage, no network.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Market describes the locality the platform writes about. Mention counting
// is driven entirely by this configuration.
type Market struct {
	RegionName    string   // e.g. "Austin"
	RegionAliases []string // e.g. "ATX"
	StateName     string   // e.g. "Texas"
	StateAbbr     string   // e.g. "TX"
	SubRegions    []string // neighborhoods/suburbs
	Landmarks     []string // recognizable local landmarks
	BusinessName  string   // the platform's business identity
	Keywords      []string // domain keywords ("homes for sale", ...)
}

// Input is the article material under analysis.
type Input struct {
	Title           string
	Content         string // HTML body
	MetaDescription string
	PrimaryKeyword  string
}

// Signals holds everything the quality analyzer scores against.
type Signals struct {
	TitleLength           int     `json:"title_length"`
	MetaDescriptionLength int     `json:"meta_description_length"`
	WordCount             int     `json:"word_count"`
	H1Count               int     `json:"h1_count"`
	SectionHeadingCount   int     `json:"section_heading_count"` // h2 + h3
	InternalLinks         int     `json:"internal_links"`
	ExternalLinks         int     `json:"external_links"`
	ImageCount            int     `json:"image_count"`
	ImagesWithAlt         int     `json:"images_with_alt"`
	KeywordOccurrences    int     `json:"keyword_occurrences"`
	KeywordDensity        float64 `json:"keyword_density"` // percent of words
	HasStructuredMarkup   bool    `json:"has_structured_markup"`
	HasLocalBusinessSchema bool   `json:"has_local_business_schema"`

	RegionMentions     int `json:"region_mentions"`
	SubRegionMentions  int `json:"sub_region_mentions"`
	StateMentions      int `json:"state_mentions"`
	SchoolMentions     int `json:"school_mentions"`
	MarketDataMentions int `json:"market_data_mentions"`
	PriceMentions      int `json:"price_mentions"`
	LandmarkMentions   int `json:"landmark_mentions"`
	BusinessSignals    int `json:"business_signals"` // 0-3: name, phone, address
}

// Analyzer extracts signals relative to a market and the platform's host.
type Analyzer struct {
	market   Market
	siteHost string
}

// New creates an analyzer. siteHost distinguishes internal from external
// links (e.g. "www.example.com").
func New(market Market, siteHost string) *Analyzer {
	return &Analyzer{market: market, siteHost: siteHost}
}

var (
	pricePattern      = regexp.MustCompile(`\$[\d,]+(?:\.\d+)?[KMk]?`)
	percentPattern    = regexp.MustCompile(`\d+(?:\.\d+)?%`)
	phonePattern      = regexp.MustCompile(`\(\d{3}\)\s?\d{3}-\d{4}|\d{3}[-.]\d{3}[-.]\d{4}`)
	addressPattern    = regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z]+\s+(?:St|Street|Ave|Avenue|Blvd|Boulevard|Dr|Drive|Ln|Lane|Rd|Road|Way|Pkwy|Parkway)\b`)
	wordSplitPattern  = regexp.MustCompile(`\s+`)
	schoolTerms       = []string{"school", "elementary", "middle school", "high school", "school district", "isd"}
	marketDataTerms   = []string{"median price", "average price", "days on market", "inventory", "price per square foot", "year-over-year", "appreciation"}
)

// Analyze extracts all signals from the input.
func (a *Analyzer) Analyze(input Input) Signals {
	signals := Signals{
		TitleLength:           len(input.Title),
		MetaDescriptionLength: len(input.MetaDescription),
	}

	text := input.Content
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input.Content))
	if err == nil {
		a.analyzeStructure(doc, &signals)
		text = doc.Text()
	}

	a.analyzeText(text, input, &signals)
	return signals
}

// analyzeStructure pulls heading, link, image and markup signals from the
// parsed document.
func (a *Analyzer) analyzeStructure(doc *goquery.Document, signals *Signals) {
	signals.H1Count = doc.Find("h1").Length()
	signals.SectionHeadingCount = doc.Find("h2, h3").Length()

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		switch {
		case href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:"):
			// Not a navigable link.
		case strings.HasPrefix(href, "/"), a.siteHost != "" && strings.Contains(href, a.siteHost):
			signals.InternalLinks++
		case strings.HasPrefix(href, "http"):
			signals.ExternalLinks++
		default:
			// Relative path within the site.
			signals.InternalLinks++
		}
	})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		signals.ImageCount++
		if alt, ok := sel.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			signals.ImagesWithAlt++
		}
	})

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		signals.HasStructuredMarkup = true
		if strings.Contains(sel.Text(), "LocalBusiness") || strings.Contains(sel.Text(), "RealEstateAgent") {
			signals.HasLocalBusinessSchema = true
		}
	})
	if doc.Find("[itemscope]").Length() > 0 {
		signals.HasStructuredMarkup = true
	}
}

// analyzeText computes word, keyword and locality mention counts over the
// visible text plus the title.
func (a *Analyzer) analyzeText(text string, input Input, signals *Signals) {
	plain := strings.TrimSpace(text)
	if plain != "" {
		signals.WordCount = len(wordSplitPattern.Split(plain, -1))
	}

	lower := strings.ToLower(plain)
	lowerWithTitle := strings.ToLower(input.Title) + " " + lower

	if keyword := strings.ToLower(strings.TrimSpace(input.PrimaryKeyword)); keyword != "" {
		signals.KeywordOccurrences = strings.Count(lower, keyword)
		keywordWords := len(strings.Fields(keyword))
		if signals.WordCount > 0 {
			signals.KeywordDensity = float64(signals.KeywordOccurrences*keywordWords) / float64(signals.WordCount) * 100.0
		}
	}

	signals.RegionMentions = countMentions(lowerWithTitle, append([]string{a.market.RegionName}, a.market.RegionAliases...))
	signals.SubRegionMentions = countMentions(lowerWithTitle, a.market.SubRegions)
	signals.StateMentions = countMentions(lowerWithTitle, []string{a.market.StateName}) + countAbbr(plain+" "+input.Title, a.market.StateAbbr)
	signals.SchoolMentions = countMentions(lower, schoolTerms)
	signals.MarketDataMentions = countMentions(lower, marketDataTerms) + len(percentPattern.FindAllString(plain, -1))
	signals.PriceMentions = len(pricePattern.FindAllString(plain, -1))
	signals.LandmarkMentions = countMentions(lower, a.market.Landmarks)

	if a.market.BusinessName != "" && strings.Contains(lower, strings.ToLower(a.market.BusinessName)) {
		signals.BusinessSignals++
	}
	if phonePattern.MatchString(plain) {
		signals.BusinessSignals++
	}
	if addressPattern.MatchString(plain) {
		signals.BusinessSignals++
	}
}

// countMentions sums occurrences of each term in lowercased text. Terms are
// matched as substrings, which is deliberate: "school district" should also
// count toward "school".
func countMentions(lowerText string, terms []string) int {
	total := 0
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		total += strings.Count(lowerText, term)
	}
	return total
}

// countAbbr counts a short uppercase abbreviation (like "TX") as a whole
// word, case-sensitively so the word "text" never matches.
func countAbbr(text, abbr string) int {
	if abbr == "" {
		return 0
	}
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(abbr) + `\b`)
	if err != nil {
		return 0
	}
	return len(pattern.FindAllString(text, -1))
}
