// Package config loads application configuration from a YAML file,
// environment variables and built-in defaults, in that order of
// precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"localpress/internal/topics"
)

// Config holds all application configuration.
type Config struct {
	App     App     `mapstructure:"app"`
	Market  Market  `mapstructure:"market"`
	AI      AI      `mapstructure:"ai"`
	Images  Images  `mapstructure:"images"`
	Sources Sources `mapstructure:"sources"`
	CTA     CTA     `mapstructure:"cta"`
	Publish Publish `mapstructure:"publish"`
	Scoring Scoring `mapstructure:"scoring"`
}

// App holds general application configuration.
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
	SiteHost string `mapstructure:"site_host"`
	SiteURL  string `mapstructure:"site_url"`
}

// Market describes the geographic market the content targets.
type Market struct {
	RegionName    string   `mapstructure:"region_name"`
	RegionAliases []string `mapstructure:"region_aliases"`
	StateName     string   `mapstructure:"state_name"`
	StateAbbr     string   `mapstructure:"state_abbr"`
	SubRegions    []string `mapstructure:"sub_regions"`
	Landmarks     []string `mapstructure:"landmarks"`
	BusinessName  string   `mapstructure:"business_name"`
	Keywords      []string `mapstructure:"keywords"`
}

// AI holds LLM configuration.
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Images holds image provider configuration.
type Images struct {
	CatalogPath    string `mapstructure:"catalog_path"`
	PexelsAPIKey   string `mapstructure:"pexels_api_key"`
	UnsplashAPIKey string `mapstructure:"unsplash_api_key"`
	ContentCount   int    `mapstructure:"content_count"`
	Orientation    string `mapstructure:"orientation"`
}

// SourceToggle enables one discovery source and sets its merge weight.
type SourceToggle struct {
	Enabled bool    `mapstructure:"enabled"`
	Weight  float64 `mapstructure:"weight"`
}

// Sources toggles the discovery sources.
type Sources struct {
	MarketData SourceToggle `mapstructure:"market_data"`
	Seasonal   SourceToggle `mapstructure:"seasonal"`
	Evergreen  SourceToggle `mapstructure:"evergreen"`
	Trends     SourceToggle `mapstructure:"trends"`
}

// CTA holds call-to-action configuration.
type CTA struct {
	OverridesPath string `mapstructure:"overrides_path"`
}

// Publish holds the publishing sink configuration.
type Publish struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	AppToken string `mapstructure:"app_token"`
}

// Scoring tunes topic discovery scoring.
type Scoring struct {
	MinScore       float64  `mapstructure:"min_score"`
	TrendingTokens []string `mapstructure:"trending_tokens"`
}

var globalConfig *Config

// Load reads configuration. An explicit config file path wins; otherwise
// .localpress.yaml is searched in the working directory and $HOME.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".localpress")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.SetEnvPrefix("LOCALPRESS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".localpress")
	viper.SetDefault("app.site_host", "www.hilltoprealty.com")
	viper.SetDefault("app.site_url", "https://www.hilltoprealty.com")

	// Market defaults
	viper.SetDefault("market.region_name", "Austin")
	viper.SetDefault("market.region_aliases", []string{"ATX", "Greater Austin"})
	viper.SetDefault("market.state_name", "Texas")
	viper.SetDefault("market.state_abbr", "TX")
	viper.SetDefault("market.sub_regions", []string{
		"Mueller", "Hyde Park", "Round Rock", "Cedar Park", "East Austin", "Westlake",
	})
	viper.SetDefault("market.landmarks", []string{
		"Lady Bird Lake", "Zilker Park", "the Domain", "South Congress",
	})
	viper.SetDefault("market.business_name", "Hilltop Realty")
	viper.SetDefault("market.keywords", []string{
		"homes for sale", "real estate", "housing market", "mortgage rates", "neighborhood",
	})

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.max_tokens", 4096)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	// Image defaults
	viper.SetDefault("images.content_count", 2)
	viper.SetDefault("images.orientation", "landscape")

	// Source defaults: market data is the authority anchor, trends the
	// lowest-weight supplement.
	viper.SetDefault("sources.market_data.enabled", true)
	viper.SetDefault("sources.market_data.weight", 1.0)
	viper.SetDefault("sources.seasonal.enabled", true)
	viper.SetDefault("sources.seasonal.weight", 0.7)
	viper.SetDefault("sources.evergreen.enabled", true)
	viper.SetDefault("sources.evergreen.weight", 0.5)
	viper.SetDefault("sources.trends.enabled", true)
	viper.SetDefault("sources.trends.weight", 0.4)

	// Scoring defaults
	viper.SetDefault("scoring.min_score", topics.DefaultMinScore)
}

// bindEnvironmentVariables supports the common env names for secrets so
// they never need to live in the YAML file.
func bindEnvironmentVariables() {
	// Both spellings: the nested key feeds Config, the flat key is what
	// the LLM client reads.
	for _, key := range []string{"ai.gemini.api_key", "gemini.api_key"} {
		bindEnvKeys(key, []string{
			"GEMINI_API_KEY",
			"GOOGLE_GEMINI_API_KEY",
			"GOOGLE_AI_API_KEY",
		})
	}
	bindEnvKeys("images.pexels_api_key", []string{
		"PEXELS_API_KEY",
	})
	bindEnvKeys("images.unsplash_api_key", []string{
		"UNSPLASH_ACCESS_KEY",
		"UNSPLASH_API_KEY",
	})
	bindEnvKeys("publish.app_token", []string{
		"LOCALPRESS_PUBLISH_TOKEN",
		"WP_APP_PASSWORD",
	})
}

func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(configKey, value)
			return
		}
	}
}
