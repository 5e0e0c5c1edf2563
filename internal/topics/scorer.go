// Package topics discovers, scores and deduplicates article topic
// candidates.
package topics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"localpress/internal/analyzer"
	"localpress/internal/similarity"
)

// Candidate is a raw topic suggestion from a discovery source, before
// scoring and persistence.
type Candidate struct {
	Title            string
	Description      string
	Keywords         []string
	RelatedLocations []string
	Source           string
	MarketStats      string // optional JSON payload of market statistics
}

// History is the recent-content sample uniqueness scoring compares against.
type History struct {
	PublishedTitles   []string
	RecentTopicTitles []string
}

// Scores are the four sub-scores plus their weighted combination, all in
// [0,100].
type Scores struct {
	Relevance  float64
	Recency    float64
	Authority  float64
	Uniqueness float64
	Total      float64
}

// ScorerConfig tunes the scoring keyword sets.
type ScorerConfig struct {
	Market             analyzer.Market
	DomainKeywords     []string // e.g. "homes for sale", "mortgage rates"
	TrendingTokens     []string // currently hot phrases, refreshed by operators
	BoilerplatePhrases []string // generic title fragments that depress uniqueness
	TopAuthoritySource string   // source tag granted the +10 authority bonus
	SecondTierSources  []string // source tags granted the +5 bonus
}

// DefaultBoilerplate is the built-in list of generic title fragments.
var DefaultBoilerplate = []string{
	"everything you need to know",
	"ultimate guide",
	"top 10",
	"best of",
	"complete guide",
}

var dataKeywords = []string{"data", "report", "statistics", "study", "forecast", "analysis", "survey"}
var expertKeywords = []string{"expert", "guide", "tips", "insider", "professional", "how to"}

// seasonalKeywords maps a month to the phrases that make a topic feel
// timely in that part of the year.
func seasonalKeywords(month time.Month) []string {
	switch month {
	case time.December, time.January, time.February:
		return []string{"winter", "holiday", "new year", "year ahead"}
	case time.March, time.April, time.May:
		return []string{"spring", "curb appeal", "garden", "selling season"}
	case time.June, time.July, time.August:
		return []string{"summer", "outdoor", "pool", "moving season"}
	default:
		return []string{"fall", "autumn", "back to school", "year-end"}
	}
}

// Scorer computes the weighted composite score for topic candidates.
type Scorer struct {
	cfg ScorerConfig
	now func() time.Time
}

// NewScorer creates a scorer. The clock is injectable for tests.
func NewScorer(cfg ScorerConfig) *Scorer {
	if len(cfg.BoilerplatePhrases) == 0 {
		cfg.BoilerplatePhrases = DefaultBoilerplate
	}
	return &Scorer{cfg: cfg, now: time.Now}
}

// Score computes all four sub-scores and the weighted total:
// 0.35 relevance + 0.25 recency + 0.20 authority + 0.20 uniqueness.
func (s *Scorer) Score(candidate Candidate, history History) Scores {
	relevance := clamp(s.scoreRelevance(candidate))
	recency := clamp(s.scoreRecency(candidate))
	authority := clamp(s.scoreAuthority(candidate))
	uniqueness := clamp(s.scoreUniqueness(candidate, history))

	total := 0.35*relevance + 0.25*recency + 0.20*authority + 0.20*uniqueness

	return Scores{
		Relevance:  relevance,
		Recency:    recency,
		Authority:  authority,
		Uniqueness: uniqueness,
		Total:      round2(total),
	}
}

// scoreRelevance measures how tied the candidate is to the target market.
func (s *Scorer) scoreRelevance(candidate Candidate) float64 {
	score := 50.0
	text := strings.ToLower(candidate.Title + " " + candidate.Description)

	regionNames := append([]string{s.cfg.Market.RegionName}, s.cfg.Market.RegionAliases...)
	for _, name := range regionNames {
		if name != "" && strings.Contains(text, strings.ToLower(name)) {
			score += 20
			break
		}
	}

	for _, sub := range s.cfg.Market.SubRegions {
		if sub != "" && strings.Contains(text, strings.ToLower(sub)) {
			score += 10 // once, regardless of how many sub-regions match
			break
		}
	}

	matched := 0
	for _, keyword := range s.cfg.DomainKeywords {
		if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
			matched++
		}
	}
	score += math.Min(float64(matched*5), 15)

	score += math.Min(float64(len(candidate.RelatedLocations)*5), 15)

	return score
}

// scoreRecency measures how timely the candidate is right now.
func (s *Scorer) scoreRecency(candidate Candidate) float64 {
	score := 50.0
	now := s.now()
	text := strings.ToLower(candidate.Title + " " + candidate.Description)

	if strings.Contains(text, fmt.Sprintf("%d", now.Year())) {
		score += 25
	}

	for _, keyword := range seasonalKeywords(now.Month()) {
		if strings.Contains(text, keyword) {
			score += 10
			break
		}
	}

	// Each trending token contributes at most once, however often it
	// repeats in the text.
	for _, token := range s.cfg.TrendingTokens {
		if token != "" && strings.Contains(text, strings.ToLower(token)) {
			score += 5
		}
	}

	return score
}

// scoreAuthority measures how well the candidate can be backed with data
// and expert positioning.
func (s *Scorer) scoreAuthority(candidate Candidate) float64 {
	score := 50.0
	text := strings.ToLower(candidate.Title + " " + candidate.Description)

	for _, keyword := range dataKeywords {
		if strings.Contains(text, keyword) {
			score += 10
		}
	}
	for _, keyword := range expertKeywords {
		if strings.Contains(text, keyword) {
			score += 5
		}
	}

	if candidate.MarketStats != "" {
		score += 15
	}

	if candidate.Source == s.cfg.TopAuthoritySource {
		score += 10
	} else {
		for _, source := range s.cfg.SecondTierSources {
			if candidate.Source == source {
				score += 5
				break
			}
		}
	}

	return score
}

// scoreUniqueness starts high and decays against recently seen content.
// The tiered penalties are deliberately harsh on near-duplicates and
// tolerant of loose overlap.
func (s *Scorer) scoreUniqueness(candidate Candidate, history History) float64 {
	score := 70.0

	for _, title := range history.PublishedTitles {
		sim := similarity.Similarity(candidate.Title, title)
		if sim > 50 {
			score -= 20
		} else if sim > 30 {
			score -= 10
		}
	}

	for _, title := range history.RecentTopicTitles {
		sim := similarity.Similarity(candidate.Title, title)
		if sim > 60 {
			score -= 30
		} else if sim > 40 {
			score -= 15
		}
	}

	lowerTitle := strings.ToLower(candidate.Title)
	for _, phrase := range s.cfg.BoilerplatePhrases {
		if strings.Contains(lowerTitle, phrase) {
			score -= 10
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

func clamp(value float64) float64 {
	return math.Max(0, math.Min(100, value))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
