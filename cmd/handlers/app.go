// Package handlers implements the CLI subcommands. Each command builds
// the application wiring lazily so that, for example, analyzing a local
// HTML file never requires an API key.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"localpress/internal/analyzer"
	"localpress/internal/config"
	"localpress/internal/cta"
	"localpress/internal/feedback"
	"localpress/internal/images"
	"localpress/internal/llm"
	"localpress/internal/logger"
	"localpress/internal/pipeline"
	"localpress/internal/publish"
	"localpress/internal/seo"
	"localpress/internal/services"
	"localpress/internal/store"
	"localpress/internal/strategy"
	"localpress/internal/topics"
)

var configFile string

// SetConfigFile records the --config flag value before any command runs.
func SetConfigFile(path string) {
	configFile = path
}

// App holds the wired application.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Market  analyzer.Market
	Service *services.Service
	Learner *feedback.Learner
}

// buildApp wires everything. The LLM client is optional: without an API
// key, discovery still runs on the non-LLM sources and analysis works,
// but generation fails with a clear error.
func buildApp() (*App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := strategy.SeedDefaults(st); err != nil {
		return nil, fmt.Errorf("failed to seed strategies: %w", err)
	}

	market := analyzer.Market{
		RegionName:    cfg.Market.RegionName,
		RegionAliases: cfg.Market.RegionAliases,
		StateName:     cfg.Market.StateName,
		StateAbbr:     cfg.Market.StateAbbr,
		SubRegions:    cfg.Market.SubRegions,
		Landmarks:     cfg.Market.Landmarks,
		BusinessName:  cfg.Market.BusinessName,
		Keywords:      cfg.Market.Keywords,
	}

	var llmClient *llm.Client
	if client, err := llm.NewClient(cfg.AI.Gemini.Model); err == nil {
		llmClient = client
	} else {
		logger.Warn("LLM client unavailable", "error", err.Error())
	}

	quality := seo.NewQualityAnalyzer(analyzer.New(market, cfg.App.SiteHost))
	optimizer := seo.NewOptimizer(cfg.App.SiteHost)

	ctaSelector := cta.NewSelector(cfg.App.SiteURL)
	if cfg.CTA.OverridesPath != "" {
		if err := ctaSelector.LoadOverrides(cfg.CTA.OverridesPath); err != nil {
			logger.Warn("failed to load CTA overrides", "path", cfg.CTA.OverridesPath, "error", err.Error())
		}
	}

	resolver := buildResolver(cfg)
	engine := buildDiscovery(cfg, market, st, llmClient)
	learner := feedback.NewLearner(st)

	var publisher pipeline.Publisher
	if cfg.Publish.BaseURL != "" {
		publisher = publish.NewClient(publish.Config{
			BaseURL:  cfg.Publish.BaseURL,
			Username: cfg.Publish.Username,
			AppToken: cfg.Publish.AppToken,
		})
	}

	var generator pipeline.Generator
	if llmClient != nil {
		generator = llmClient
	} else {
		generator = unavailableGenerator{}
	}

	pipe := pipeline.New(
		st,
		strategy.NewSelector(st),
		generator,
		quality,
		optimizer,
		resolver,
		ctaSelector,
		publisher,
		pipeline.Market{
			RegionName:   cfg.Market.RegionName,
			StateName:    cfg.Market.StateName,
			BusinessName: cfg.Market.BusinessName,
		},
	)

	return &App{
		Config:  cfg,
		Store:   st,
		Market:  market,
		Service: services.New(engine, pipe, quality, learner),
		Learner: learner,
	}, nil
}

func buildResolver(cfg *config.Config) *images.Resolver {
	var providers []images.Provider
	if cfg.Images.CatalogPath != "" {
		entries, err := images.LoadCatalog(cfg.Images.CatalogPath)
		if err != nil {
			logger.Warn("failed to load image catalog", "path", cfg.Images.CatalogPath, "error", err.Error())
		} else {
			providers = append(providers, images.NewCatalogProvider(entries))
		}
	}
	providers = append(providers,
		images.NewPexelsProvider(cfg.Images.PexelsAPIKey),
		images.NewUnsplashProvider(cfg.Images.UnsplashAPIKey),
	)
	return images.NewResolver(providers...)
}

func buildDiscovery(cfg *config.Config, market analyzer.Market, st *store.Store, llmClient *llm.Client) *topics.Engine {
	snapshot := topics.MarketSnapshot{
		MedianPrice:     540000,
		YoYChangePct:    2.4,
		DaysOnMarket:    38,
		ActiveListings:  9200,
		MortgageRatePct: 6.1,
	}

	toggle := func(t config.SourceToggle) topics.SourceConfig {
		return topics.SourceConfig{Enabled: t.Enabled, Weight: t.Weight}
	}

	var trendsGen topics.Generator
	if llmClient != nil {
		trendsGen = llmClient
	}

	sources := []topics.Source{
		topics.NewMarketDataSource(toggle(cfg.Sources.MarketData), market, snapshot),
		topics.NewSeasonalSource(toggle(cfg.Sources.Seasonal), market),
		topics.NewEvergreenSource(toggle(cfg.Sources.Evergreen), market),
		topics.NewTrendsSource(toggle(cfg.Sources.Trends), market, trendsGen),
	}

	scorer := topics.NewScorer(topics.ScorerConfig{
		Market:             market,
		DomainKeywords:     cfg.Market.Keywords,
		TrendingTokens:     cfg.Scoring.TrendingTokens,
		TopAuthoritySource: topics.SourceMarketData,
		SecondTierSources:  []string{topics.SourceSeasonal, topics.SourceEvergreen},
	})

	return topics.NewEngine(sources, scorer, st)
}

// unavailableGenerator surfaces the missing-key condition at the point of
// use instead of at startup.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(_ context.Context, _, _ string, _ llm.Options) (string, error) {
	return "", fmt.Errorf("no LLM API key configured")
}

// printJSON writes a value as indented JSON to stdout.
func printJSON(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
