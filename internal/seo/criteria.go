// Package seo scores article content against search-optimization and
// local-relevance criteria and produces ranked remediation advice.
package seo

import "localpress/internal/analyzer"

// Status classifies how well an article meets one criterion.
type Status string

const (
	StatusGood Status = "good"
	StatusOK   Status = "ok"
	StatusPoor Status = "poor"
)

// statusWeight converts a classification into score mass.
var statusWeight = map[Status]float64{
	StatusGood: 1.0,
	StatusOK:   0.6,
	StatusPoor: 0.2,
}

// Criterion is one scored check: a classifier over the extracted signals,
// a point budget, and a fixed remediation string emitted when non-good.
type Criterion struct {
	Name        string
	MaxPoints   int
	Classify    func(analyzer.Signals) Status
	Remediation string
}

// inBand classifies a count against a tight "good" band and a wider "ok"
// band, everything else being poor.
func inBand(value, goodLo, goodHi, okLo, okHi int) Status {
	if value >= goodLo && value <= goodHi {
		return StatusGood
	}
	if value >= okLo && value <= okHi {
		return StatusOK
	}
	return StatusPoor
}

// atLeast classifies a count against minimum thresholds for good and ok.
func atLeast(value, goodMin, okMin int) Status {
	if value >= goodMin {
		return StatusGood
	}
	if value >= okMin {
		return StatusOK
	}
	return StatusPoor
}

// seoCriteria are the ten search-optimization checks.
var seoCriteria = []Criterion{
	{
		Name:      "title_length",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return inBand(s.TitleLength, 50, 60, 40, 70)
		},
		Remediation: "Rewrite the title to 50-60 characters so it displays fully in search results.",
	},
	{
		Name:      "meta_description",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return inBand(s.MetaDescriptionLength, 140, 155, 120, 170)
		},
		Remediation: "Write a meta description of 140-155 characters summarizing the article.",
	},
	{
		Name:      "h1_count",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			if s.H1Count == 1 {
				return StatusGood
			}
			if s.H1Count == 2 {
				return StatusOK
			}
			return StatusPoor
		},
		Remediation: "Use exactly one top-level heading; demote extra H1s to H2.",
	},
	{
		Name:      "section_headings",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return inBand(s.SectionHeadingCount, 3, 8, 2, 10)
		},
		Remediation: "Break the article into 3-8 sections with H2/H3 headings.",
	},
	{
		Name:      "word_count",
		MaxPoints: 15,
		Classify: func(s analyzer.Signals) Status {
			return inBand(s.WordCount, 1200, 2500, 800, 3000)
		},
		Remediation: "Target 1,200-2,500 words; thinner content rarely ranks for competitive queries.",
	},
	{
		Name:      "keyword_density",
		MaxPoints: 15,
		Classify: func(s analyzer.Signals) Status {
			switch {
			case s.KeywordDensity >= 0.5 && s.KeywordDensity <= 2.5:
				return StatusGood
			case s.KeywordDensity >= 0.3 && s.KeywordDensity <= 3.5:
				return StatusOK
			default:
				return StatusPoor
			}
		},
		Remediation: "Keep primary keyword density between 0.5% and 2.5%; rephrase stuffed or missing usages.",
	},
	{
		Name:      "internal_links",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return inBand(s.InternalLinks, 3, 7, 1, 9)
		},
		Remediation: "Add 3-7 internal links to related listings and neighborhood pages.",
	},
	{
		Name:      "external_links",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return inBand(s.ExternalLinks, 2, 5, 1, 7)
		},
		Remediation: "Cite 2-5 authoritative external sources (market reports, city data).",
	},
	{
		Name:      "images",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			if s.ImageCount >= 2 && s.ImageCount <= 6 && s.ImagesWithAlt == s.ImageCount {
				return StatusGood
			}
			if s.ImageCount >= 1 {
				return StatusOK
			}
			return StatusPoor
		},
		Remediation: "Include 2-6 images, each with descriptive alt text.",
	},
	{
		Name:      "structured_markup",
		MaxPoints: 5,
		Classify: func(s analyzer.Signals) Status {
			if s.HasStructuredMarkup {
				return StatusGood
			}
			return StatusPoor
		},
		Remediation: "Embed Article JSON-LD structured markup so search engines can classify the page.",
	},
}

// geoCriteria are the nine local-relevance checks.
var geoCriteria = []Criterion{
	{
		Name:      "region_mentions",
		MaxPoints: 15,
		Classify: func(s analyzer.Signals) Status {
			return atLeast(s.RegionMentions, 3, 1)
		},
		Remediation: "Mention the region by name at least 3 times, including once in the opening paragraph.",
	},
	{
		Name:      "sub_region_mentions",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return atLeast(s.SubRegionMentions, 2, 1)
		},
		Remediation: "Reference at least two specific neighborhoods or suburbs.",
	},
	{
		Name:      "state_mentions",
		MaxPoints: 5,
		Classify: func(s analyzer.Signals) Status {
			if s.StateMentions >= 1 {
				return StatusGood
			}
			return StatusPoor
		},
		Remediation: "Mention the state name or abbreviation at least once for disambiguation.",
	},
	{
		Name:      "school_mentions",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return atLeast(s.SchoolMentions, 2, 1)
		},
		Remediation: "Reference local schools or districts; school quality drives family buyer searches.",
	},
	{
		Name:      "market_data_mentions",
		MaxPoints: 15,
		Classify: func(s analyzer.Signals) Status {
			return atLeast(s.MarketDataMentions, 3, 1)
		},
		Remediation: "Include quantifiable market data: median price, days on market, inventory trends.",
	},
	{
		Name:      "price_mentions",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return atLeast(s.PriceMentions, 3, 1)
		},
		Remediation: "Cite at least 3 concrete price figures so readers can anchor expectations.",
	},
	{
		Name:      "business_identity",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return atLeast(s.BusinessSignals, 2, 1)
		},
		Remediation: "Include at least two of: business name, phone number, street address.",
	},
	{
		Name:      "landmark_mentions",
		MaxPoints: 10,
		Classify: func(s analyzer.Signals) Status {
			return atLeast(s.LandmarkMentions, 2, 1)
		},
		Remediation: "Anchor the article with recognizable local landmarks.",
	},
	{
		Name:      "local_business_markup",
		MaxPoints: 5,
		Classify: func(s analyzer.Signals) Status {
			if s.HasLocalBusinessSchema {
				return StatusGood
			}
			return StatusPoor
		},
		Remediation: "Add LocalBusiness or RealEstateAgent JSON-LD markup.",
	},
}
