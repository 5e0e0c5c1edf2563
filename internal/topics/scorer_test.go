package topics

import (
	"math"
	"testing"
	"time"

	"localpress/internal/analyzer"
)

func testMarket() analyzer.Market {
	return analyzer.Market{
		RegionName:    "Austin",
		RegionAliases: []string{"ATX"},
		StateName:     "Texas",
		StateAbbr:     "TX",
		SubRegions:    []string{"Mueller", "Hyde Park", "Round Rock"},
		BusinessName:  "Hilltop Realty",
	}
}

func fixedScorer(cfg ScorerConfig) *Scorer {
	s := NewScorer(cfg)
	// Mid-July keeps seasonal bonuses predictable.
	s.now = func() time.Time { return time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestScore_WeightedTotal(t *testing.T) {
	s := fixedScorer(ScorerConfig{Market: testMarket()})
	scores := s.Score(Candidate{Title: "Austin Summer Market Report 2026"}, History{})

	want := 0.35*scores.Relevance + 0.25*scores.Recency + 0.20*scores.Authority + 0.20*scores.Uniqueness
	want = math.Round(want*100) / 100
	if scores.Total != want {
		t.Errorf("Total = %.2f, want weighted combination %.2f", scores.Total, want)
	}
}

func TestScore_SubScoresClamped(t *testing.T) {
	cfg := ScorerConfig{
		Market:         testMarket(),
		DomainKeywords: []string{"homes", "market", "report", "data", "forecast"},
		TrendingTokens: []string{"rates", "inventory", "report", "data", "forecast", "summer", "austin", "market", "analysis", "study", "survey", "statistics"},
	}
	s := fixedScorer(cfg)
	// A candidate engineered to trip every bonus at once.
	scores := s.Score(Candidate{
		Title:            "Austin Mueller Summer 2026 Market Report: Data, Forecast, Analysis, Study, Survey, Statistics, Rates, Inventory, Homes",
		Description:      "Expert guide with tips and insider professional how to advice.",
		RelatedLocations: []string{"Mueller", "Hyde Park", "Round Rock", "Cedar Park"},
		Source:           SourceMarketData,
		MarketStats:      `{"median_price": 540000}`,
	}, History{})

	for name, value := range map[string]float64{
		"relevance":  scores.Relevance,
		"recency":    scores.Recency,
		"authority":  scores.Authority,
		"uniqueness": scores.Uniqueness,
		"total":      scores.Total,
	} {
		if value < 0 || value > 100 {
			t.Errorf("%s score %.2f outside [0,100]", name, value)
		}
	}
}

func TestScoreRelevance_RegionBonusAppliesOnce(t *testing.T) {
	s := fixedScorer(ScorerConfig{Market: testMarket()})

	once := s.scoreRelevance(Candidate{Title: "Austin homes"})
	twice := s.scoreRelevance(Candidate{Title: "Austin ATX Austin homes"})
	if once != twice {
		t.Errorf("repeated region mentions changed relevance: %.2f vs %.2f", once, twice)
	}
	none := s.scoreRelevance(Candidate{Title: "Generic homes"})
	if once-none != 20 {
		t.Errorf("region bonus = %.2f, want 20", once-none)
	}
}

func TestScoreRecency_YearAndSeasonBonuses(t *testing.T) {
	s := fixedScorer(ScorerConfig{Market: testMarket()})

	base := s.scoreRecency(Candidate{Title: "Neighborhood guide"})
	withYear := s.scoreRecency(Candidate{Title: "Neighborhood guide 2026"})
	if withYear-base != 25 {
		t.Errorf("current-year bonus = %.2f, want 25", withYear-base)
	}

	withSeason := s.scoreRecency(Candidate{Title: "Summer neighborhood guide"})
	if withSeason-base != 10 {
		t.Errorf("seasonal bonus = %.2f, want 10", withSeason-base)
	}
}

func TestScoreAuthority_SourceTiers(t *testing.T) {
	s := fixedScorer(ScorerConfig{
		Market:             testMarket(),
		TopAuthoritySource: SourceMarketData,
		SecondTierSources:  []string{SourceSeasonal, SourceEvergreen},
	})

	base := s.scoreAuthority(Candidate{Title: "x", Source: SourceTrends})
	top := s.scoreAuthority(Candidate{Title: "x", Source: SourceMarketData})
	second := s.scoreAuthority(Candidate{Title: "x", Source: SourceSeasonal})

	if top-base != 10 {
		t.Errorf("top-tier bonus = %.2f, want 10", top-base)
	}
	if second-base != 5 {
		t.Errorf("second-tier bonus = %.2f, want 5", second-base)
	}
}

func TestScoreUniqueness_DecaysAgainstHistory(t *testing.T) {
	s := fixedScorer(ScorerConfig{Market: testMarket()})
	candidate := Candidate{Title: "Austin Housing Market Outlook"}

	fresh := s.scoreUniqueness(candidate, History{})
	if fresh != 70 {
		t.Errorf("uniqueness with empty history = %.2f, want 70", fresh)
	}

	// Progressively closer history must strictly reduce the score until the
	// floor.
	histories := []History{
		{PublishedTitles: []string{"Dallas Restaurant Week Preview"}},
		{PublishedTitles: []string{"Austin Housing Prices This Month"}},
		{PublishedTitles: []string{"Austin Housing Market Outlook"}},
		{
			PublishedTitles:   []string{"Austin Housing Market Outlook"},
			RecentTopicTitles: []string{"Austin Housing Market Outlook 2026"},
		},
	}
	prev := fresh + 1
	for i, history := range histories {
		score := s.scoreUniqueness(candidate, history)
		if score > prev {
			t.Errorf("history %d: score increased %.2f -> %.2f", i, prev, score)
		}
		if score < 0 {
			t.Errorf("history %d: score %.2f below floor", i, score)
		}
		prev = score
	}
}

func TestScoreUniqueness_BoilerplatePenalty(t *testing.T) {
	s := fixedScorer(ScorerConfig{Market: testMarket()})

	plain := s.scoreUniqueness(Candidate{Title: "Austin Condo Pricing"}, History{})
	generic := s.scoreUniqueness(Candidate{Title: "The Ultimate Guide to Austin Condo Pricing"}, History{})
	if plain-generic != 10 {
		t.Errorf("boilerplate penalty = %.2f, want 10", plain-generic)
	}
}
