// Package config builds the run configuration from environment variables and
// the optional feeds YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	// APIKeyEnv is the single variable holding the translation service credential.
	APIKeyEnv = "OPENAI_API_KEY"
)

// FeedSource is one configured news feed.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DefaultFeeds is used when no feeds file is present.
var DefaultFeeds = []FeedSource{
	{Name: "Reuters", URL: "https://www.reutersagency.com/feed/?best-topics=world&&post_type=best"},
	{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
	{Name: "AP", URL: "https://apnews.com/hub/ap-top-news?output=rss"},
}

type Config struct {
	// Feeds
	Feeds           []FeedSource
	FeedsConfigPath string
	EntriesPerFeed  int
	FeedTimeout     time.Duration

	// Store
	StorePath  string
	MaxRecords int

	// Translation service
	Provider        string // "openai" or "gemini"
	APIKey          string
	APIURL          string
	Model           string
	MaxOutputTokens int
	TargetLanguage  string
	RequestTimeout  time.Duration

	// Gemini settings
	GeminiAPIKey string
	GeminiModel  string

	// Translation budget
	MaxTranslations     int           // per run, 0 = unlimited
	TranslationInterval time.Duration // minimum spacing between calls, 0 = none

	// Optional sinks
	DatabaseURL     string
	MetricsTextfile string

	Debug bool
}

// Default returns a configuration with every default applied and no
// environment read, so tests can construct one in isolation.
func Default() *Config {
	feeds := make([]FeedSource, len(DefaultFeeds))
	copy(feeds, DefaultFeeds)

	return &Config{
		Feeds:           feeds,
		FeedsConfigPath: "configs/feeds.yaml",
		EntriesPerFeed:  5,
		FeedTimeout:     20 * time.Second,
		StorePath:       "data/news.json",
		MaxRecords:      200,
		Provider:        ProviderOpenAI,
		APIURL:          "https://api.openai.com/v1/responses",
		Model:           "gpt-4o-mini",
		MaxOutputTokens: 200,
		TargetLanguage:  "Thai",
		RequestTimeout:  20 * time.Second,
		GeminiModel:     "gemini-1.5-flash",
	}
}

func Load() (*Config, error) {
	cfg := Default()

	cfg.APIKey = os.Getenv(APIKeyEnv)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.MetricsTextfile = os.Getenv("METRICS_TEXTFILE")

	cfg.APIURL = getEnvOrDefault("OPENAI_API_URL", cfg.APIURL)
	cfg.Model = getEnvOrDefault("OPENAI_MODEL", cfg.Model)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.TargetLanguage = getEnvOrDefault("TARGET_LANGUAGE", cfg.TargetLanguage)
	cfg.Provider = getEnvOrDefault("TRANSLATOR_PROVIDER", cfg.Provider)
	cfg.StorePath = getEnvOrDefault("NEWS_DB_PATH", cfg.StorePath)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)

	cfg.MaxRecords = getEnvIntOrDefault("MAX_NEWS", cfg.MaxRecords)
	cfg.EntriesPerFeed = getEnvIntOrDefault("ENTRIES_PER_FEED", cfg.EntriesPerFeed)
	cfg.MaxOutputTokens = getEnvIntOrDefault("MAX_OUTPUT_TOKENS", cfg.MaxOutputTokens)
	cfg.MaxTranslations = getEnvIntOrDefault("MAX_TRANSLATIONS", cfg.MaxTranslations)

	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.FeedTimeout = getEnvDurationOrDefault("FEED_TIMEOUT", cfg.FeedTimeout)
	cfg.TranslationInterval = getEnvDurationOrDefault("TRANSLATION_INTERVAL", cfg.TranslationInterval)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	feeds, err := LoadFeeds(cfg.FeedsConfigPath)
	switch {
	case err == nil:
		cfg.Feeds = feeds
	case errors.Is(err, os.ErrNotExist):
		// built-in feed list stays
	default:
		return nil, err
	}

	return cfg, cfg.Validate()
}

// FeedsFile is the YAML layout of the feeds config:
//
//	feeds:
//	  - name: BBC
//	    url: https://...
type FeedsFile struct {
	Feeds []FeedSource `yaml:"feeds"`
}

// LoadFeeds reads the feed list from a YAML file.
func LoadFeeds(path string) ([]FeedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var file FeedsFile
	if err := yaml.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file %s: %w", path, err)
	}
	return file.Feeds, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate checks structural settings. A missing API key is not an error:
// it is reported per item by the translator.
func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	seen := make(map[string]struct{}, len(c.Feeds))
	for _, f := range c.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed name is required (url %q)", f.URL)
		}
		if _, err := url.ParseRequestURI(f.URL); err != nil {
			return fmt.Errorf("invalid feed URL for %s: %q", f.Name, f.URL)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate feed name: %s", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	if c.StorePath == "" {
		return fmt.Errorf("NEWS_DB_PATH must not be empty")
	}
	if c.MaxRecords <= 0 {
		return fmt.Errorf("MAX_NEWS must be positive")
	}
	if c.EntriesPerFeed <= 0 {
		return fmt.Errorf("ENTRIES_PER_FEED must be positive")
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be positive")
	}
	if c.RequestTimeout <= 0 || c.FeedTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT and FEED_TIMEOUT must be positive")
	}
	if c.MaxTranslations < 0 {
		return fmt.Errorf("MAX_TRANSLATIONS cannot be negative")
	}
	if c.Provider != ProviderOpenAI && c.Provider != ProviderGemini {
		return fmt.Errorf("TRANSLATOR_PROVIDER must be '%s' or '%s'", ProviderOpenAI, ProviderGemini)
	}
	return nil
}
