package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"localpress/internal/analyzer"
	"localpress/internal/llm"
)

// Source tags, highest authority first.
const (
	SourceMarketData = "market_data"
	SourceSeasonal   = "seasonal"
	SourceEvergreen  = "evergreen"
	SourceTrends     = "trends"
)

// Generator is the slice of the LLM client the trends source needs.
type Generator interface {
	Generate(ctx context.Context, prompt, contextText string, opts llm.Options) (string, error)
}

// SourceConfig is the shared toggle/weight configuration for a source.
type SourceConfig struct {
	Enabled bool
	Weight  float64
}

// MarketSnapshot is the latest market statistics payload, typically
// refreshed by an upstream import job.
type MarketSnapshot struct {
	MedianPrice     int     `json:"median_price"`
	YoYChangePct    float64 `json:"yoy_change_pct"`
	DaysOnMarket    int     `json:"days_on_market"`
	ActiveListings  int     `json:"active_listings"`
	MortgageRatePct float64 `json:"mortgage_rate_pct"`
}

// MarketDataSource derives topic candidates from current market
// statistics. It is the highest-authority source: every candidate carries
// the statistics payload as evidence.
type MarketDataSource struct {
	cfg      SourceConfig
	market   analyzer.Market
	snapshot MarketSnapshot
	now      func() time.Time
}

// NewMarketDataSource creates the market statistics source.
func NewMarketDataSource(cfg SourceConfig, market analyzer.Market, snapshot MarketSnapshot) *MarketDataSource {
	return &MarketDataSource{cfg: cfg, market: market, snapshot: snapshot, now: time.Now}
}

func (s *MarketDataSource) Name() string    { return SourceMarketData }
func (s *MarketDataSource) Weight() float64 { return s.cfg.Weight }
func (s *MarketDataSource) Enabled() bool   { return s.cfg.Enabled }

// Fetch builds statistics-backed candidates for the current month.
func (s *MarketDataSource) Fetch(_ context.Context) ([]Candidate, error) {
	stats, err := json.Marshal(s.snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode market snapshot: %w", err)
	}

	now := s.now()
	region := s.market.RegionName
	monthYear := fmt.Sprintf("%s %d", now.Month(), now.Year())

	candidates := []Candidate{
		{
			Title:       fmt.Sprintf("%s Housing Market Report: %s", region, monthYear),
			Description: fmt.Sprintf("Data-driven analysis of the %s market: median price, inventory and days on market.", region),
			Keywords:    []string{"housing market", "median price", "market report"},
			MarketStats: string(stats),
		},
		{
			Title:       fmt.Sprintf("What $%dK Buys in %s Right Now", s.snapshot.MedianPrice/1000, region),
			Description: fmt.Sprintf("A price-anchored tour of current %s listings at the median.", region),
			Keywords:    []string{"home prices", "listings", "buying"},
			MarketStats: string(stats),
		},
		{
			Title:       fmt.Sprintf("Is %d a Good Year to Buy in %s? The Data Says", now.Year(), region),
			Description: "Mortgage rates, appreciation and inventory trends, interpreted for buyers.",
			Keywords:    []string{"mortgage rates", "buying", "forecast"},
			MarketStats: string(stats),
		},
	}
	return candidates, nil
}

// SeasonalSource produces calendar-driven candidates.
type SeasonalSource struct {
	cfg    SourceConfig
	market analyzer.Market
	now    func() time.Time
}

// NewSeasonalSource creates the calendar source.
func NewSeasonalSource(cfg SourceConfig, market analyzer.Market) *SeasonalSource {
	return &SeasonalSource{cfg: cfg, market: market, now: time.Now}
}

func (s *SeasonalSource) Name() string    { return SourceSeasonal }
func (s *SeasonalSource) Weight() float64 { return s.cfg.Weight }
func (s *SeasonalSource) Enabled() bool   { return s.cfg.Enabled }

func (s *SeasonalSource) Fetch(_ context.Context) ([]Candidate, error) {
	region := s.market.RegionName
	year := s.now().Year()

	var titles []string
	switch s.now().Month() {
	case time.December, time.January, time.February:
		titles = []string{
			fmt.Sprintf("%s Housing: What to Expect in the Year Ahead (%d)", region, year),
			fmt.Sprintf("Why Winter Is a Secret Buying Season in %s", region),
		}
	case time.March, time.April, time.May:
		titles = []string{
			fmt.Sprintf("Spring Selling Season Prep for %s Homeowners", region),
			fmt.Sprintf("Curb Appeal Projects That Pay Off in %s", region),
		}
	case time.June, time.July, time.August:
		titles = []string{
			fmt.Sprintf("Summer Moving Season: Timing Your %s Home Sale", region),
			fmt.Sprintf("Pool Homes in %s: Premium or Headache?", region),
		}
	default:
		titles = []string{
			fmt.Sprintf("Fall Market Shift: What %s Buyers Gain After Summer", region),
			fmt.Sprintf("Back to School: How School Ratings Move %s Home Values", region),
		}
	}

	candidates := make([]Candidate, 0, len(titles))
	for _, title := range titles {
		candidates = append(candidates, Candidate{
			Title:       title,
			Description: fmt.Sprintf("Seasonal guidance for %s buyers and sellers.", region),
			Keywords:    []string{"seasonal", "timing", "home sale"},
		})
	}
	return candidates, nil
}

// EvergreenSource rotates neighborhood and staple-topic templates so the
// pipeline never runs dry when timely sources are thin.
type EvergreenSource struct {
	cfg    SourceConfig
	market analyzer.Market
}

// NewEvergreenSource creates the template source.
func NewEvergreenSource(cfg SourceConfig, market analyzer.Market) *EvergreenSource {
	return &EvergreenSource{cfg: cfg, market: market}
}

func (s *EvergreenSource) Name() string    { return SourceEvergreen }
func (s *EvergreenSource) Weight() float64 { return s.cfg.Weight }
func (s *EvergreenSource) Enabled() bool   { return s.cfg.Enabled }

func (s *EvergreenSource) Fetch(_ context.Context) ([]Candidate, error) {
	var candidates []Candidate
	for _, neighborhood := range s.market.SubRegions {
		candidates = append(candidates, Candidate{
			Title:            fmt.Sprintf("Living in %s: A Neighborhood Guide", neighborhood),
			Description:      fmt.Sprintf("Homes, schools, commutes and local life in %s.", neighborhood),
			Keywords:         []string{"neighborhood guide", "living in", "schools"},
			RelatedLocations: []string{neighborhood},
		})
	}
	candidates = append(candidates, Candidate{
		Title:       fmt.Sprintf("First-Time Buyer Guide for %s", s.market.RegionName),
		Description: "Financing, inspections and negotiation for first-time buyers.",
		Keywords:    []string{"first-time buyer", "financing", "guide"},
	})
	return candidates, nil
}

// TrendsSource asks the LLM for currently trending local topics. It is the
// least authoritative source and the only one that can fail on network
// conditions, which discovery tolerates.
type TrendsSource struct {
	cfg       SourceConfig
	market    analyzer.Market
	generator Generator
}

// NewTrendsSource creates the LLM-backed trends source.
func NewTrendsSource(cfg SourceConfig, market analyzer.Market, generator Generator) *TrendsSource {
	return &TrendsSource{cfg: cfg, market: market, generator: generator}
}

func (s *TrendsSource) Name() string    { return SourceTrends }
func (s *TrendsSource) Weight() float64 { return s.cfg.Weight }
func (s *TrendsSource) Enabled() bool   { return s.cfg.Enabled && s.generator != nil }

const trendsPrompt = `Suggest 5 article topics about the %s, %s real estate market that local
buyers and sellers are searching for right now. Respond with a JSON array of
objects with fields "title", "description" and "keywords" (array of strings).
Respond with JSON only.`

func (s *TrendsSource) Fetch(ctx context.Context) ([]Candidate, error) {
	prompt := fmt.Sprintf(trendsPrompt, s.market.RegionName, s.market.StateAbbr)
	text, err := s.generator.Generate(ctx, prompt, "", llm.Options{Temperature: 0.9})
	if err != nil {
		return nil, fmt.Errorf("trends generation failed: %w", err)
	}

	var suggestions []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Keywords    []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFences(text)), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse trends response: %w", err)
	}

	var candidates []Candidate
	for _, suggestion := range suggestions {
		if suggestion.Title == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:       suggestion.Title,
			Description: suggestion.Description,
			Keywords:    suggestion.Keywords,
		})
	}
	return candidates, nil
}
