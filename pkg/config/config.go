package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the feed generator
type Config struct {
	// Mirror front-end settings
	Nitter NitterConfig `yaml:"nitter" json:"nitter"`

	// Lists to follow and the membership cache
	Lists ListsConfig `yaml:"lists" json:"lists"`

	// Post extraction and ranking limits
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Pauses between upstream requests
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output feed metadata
	Feed FeedConfig `yaml:"feed" json:"feed"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// NitterConfig holds mirror and HTTP settings
type NitterConfig struct {
	Instances      []string      `yaml:"instances" json:"instances"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	CanonicalHost  string        `yaml:"canonical_host" json:"canonical_host"`
}

// ListsConfig holds the monitored lists and membership cache settings
type ListsConfig struct {
	URLs           []string      `yaml:"urls" json:"urls"`
	CacheFile      string        `yaml:"cache_file" json:"cache_file"`
	CacheRetention time.Duration `yaml:"cache_retention" json:"cache_retention"`
	ForceRefresh   bool          `yaml:"force_refresh" json:"force_refresh"`
}

// ScrapeConfig holds extraction filters and ranking limits
type ScrapeConfig struct {
	PostsPerAccount int           `yaml:"posts_per_account" json:"posts_per_account"`
	MinTextLength   int           `yaml:"min_text_length" json:"min_text_length"`
	MaxPostAge      time.Duration `yaml:"max_post_age" json:"max_post_age"`
	TopN            int           `yaml:"top_n" json:"top_n"`
}

// RateLimitConfig holds the randomized pause windows
type RateLimitConfig struct {
	ListPauseMin    time.Duration `yaml:"list_pause_min" json:"list_pause_min"`
	ListPauseMax    time.Duration `yaml:"list_pause_max" json:"list_pause_max"`
	AccountPauseMin time.Duration `yaml:"account_pause_min" json:"account_pause_min"`
	AccountPauseMax time.Duration `yaml:"account_pause_max" json:"account_pause_max"`
}

// FeedConfig holds the output path and channel-level metadata
type FeedConfig struct {
	OutputPath       string `yaml:"output_path" json:"output_path"`
	ID               string `yaml:"id" json:"id"`
	Title            string `yaml:"title" json:"title"`
	Author           string `yaml:"author" json:"author"`
	Link             string `yaml:"link" json:"link"`
	Subtitle         string `yaml:"subtitle" json:"subtitle"`
	FallbackSubtitle string `yaml:"fallback_subtitle" json:"fallback_subtitle"`
	Language         string `yaml:"language" json:"language"`
	PreviewLength    int    `yaml:"preview_length" json:"preview_length"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultInstances is the ordered list of public mirrors tried at run start
var DefaultInstances = []string{
	"https://nitter.poast.org",
	"https://nitter.net",
	"https://nitter.privacydev.net",
	"https://nitter.unixfox.eu",
	"https://nitter.mint.lgbt",
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Nitter: NitterConfig{
			Instances:      append([]string(nil), DefaultInstances...),
			UserAgent:      "Mozilla/5.0 (compatible; nitterfeed/1.0; list digest generator)",
			ProbeTimeout:   10 * time.Second,
			RequestTimeout: 15 * time.Second,
			CanonicalHost:  "https://twitter.com",
		},
		Lists: ListsConfig{
			URLs:           []string{"https://x.com/i/lists/1539497752140206080"},
			CacheFile:      "list_members_cache.json",
			CacheRetention: 7 * 24 * time.Hour,
		},
		Scrape: ScrapeConfig{
			PostsPerAccount: 3,
			MinTextLength:   20,
			MaxPostAge:      24 * time.Hour,
			TopN:            100,
		},
		RateLimit: RateLimitConfig{
			ListPauseMin:    2 * time.Second,
			ListPauseMax:    4 * time.Second,
			AccountPauseMin: 1 * time.Second,
			AccountPauseMax: 2 * time.Second,
		},
		Feed: FeedConfig{
			OutputPath:       "tech_ai_twitter.xml",
			ID:               "https://yourdomain.com/tech-ai-twitter",
			Title:            "Tech & AI Twitter Daily Digest",
			Author:           "Twitter List Aggregator",
			Link:             "https://yourdomain.com/tech-ai-twitter",
			Subtitle:         "Daily highlights from curated Twitter lists",
			FallbackSubtitle: "Error generating feed - see logs",
			Language:         "en",
			PreviewLength:    120,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if instances := os.Getenv("NITTERFEED_INSTANCES"); instances != "" {
		c.Nitter.Instances = splitList(instances)
	}
	if userAgent := os.Getenv("NITTERFEED_USER_AGENT"); userAgent != "" {
		c.Nitter.UserAgent = userAgent
	}
	if timeout := os.Getenv("NITTERFEED_REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid NITTERFEED_REQUEST_TIMEOUT: %w", err)
		}
		c.Nitter.RequestTimeout = d
	}

	if lists := os.Getenv("NITTERFEED_LISTS"); lists != "" {
		c.Lists.URLs = splitList(lists)
	}
	if cacheFile := os.Getenv("NITTERFEED_CACHE_FILE"); cacheFile != "" {
		c.Lists.CacheFile = cacheFile
	}

	if topN := os.Getenv("NITTERFEED_TOP_N"); topN != "" {
		var val int
		fmt.Sscanf(topN, "%d", &val)
		if val > 0 {
			c.Scrape.TopN = val
		}
	}

	if output := os.Getenv("NITTERFEED_OUTPUT"); output != "" {
		c.Feed.OutputPath = output
	}
	if link := os.Getenv("NITTERFEED_FEED_LINK"); link != "" {
		c.Feed.Link = link
		c.Feed.ID = link
	}

	if logLevel := os.Getenv("NITTERFEED_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("NITTERFEED_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultConfigPath is the per-user config location
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "nitterfeed", "config.yaml")
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".nitterfeed.yaml",
		".nitterfeed.yml",
		DefaultConfigPath(),
		filepath.Join(xdg.ConfigHome, "nitterfeed", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if len(c.Nitter.Instances) == 0 {
		errs = append(errs, errors.New("at least one nitter instance is required"))
	}
	for _, instance := range c.Nitter.Instances {
		if err := validateHTTPURL(instance); err != nil {
			errs = append(errs, fmt.Errorf("nitter instance %q: %w", instance, err))
		}
	}
	if c.Nitter.ProbeTimeout <= 0 || c.Nitter.ProbeTimeout > 10*time.Second {
		errs = append(errs, errors.New("probe timeout must be between 0 and 10s"))
	}
	if c.Nitter.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if err := validateHTTPURL(c.Nitter.CanonicalHost); err != nil {
		errs = append(errs, fmt.Errorf("canonical host: %w", err))
	}

	if len(c.Lists.URLs) == 0 {
		errs = append(errs, errors.New("at least one list is required"))
	}
	if c.Lists.CacheFile == "" {
		errs = append(errs, errors.New("cache file is required"))
	}
	if c.Lists.CacheRetention <= 0 {
		errs = append(errs, errors.New("cache retention must be positive"))
	}

	if c.Scrape.PostsPerAccount <= 0 {
		errs = append(errs, errors.New("posts per account must be positive"))
	}
	if c.Scrape.MinTextLength < 0 {
		errs = append(errs, errors.New("min text length cannot be negative"))
	}
	if c.Scrape.MaxPostAge <= 0 {
		errs = append(errs, errors.New("max post age must be positive"))
	}
	if c.Scrape.TopN <= 0 {
		errs = append(errs, errors.New("top n must be positive"))
	}

	if c.RateLimit.ListPauseMin < 0 || c.RateLimit.ListPauseMax < c.RateLimit.ListPauseMin {
		errs = append(errs, errors.New("list pause window is invalid"))
	}
	if c.RateLimit.AccountPauseMin < 0 || c.RateLimit.AccountPauseMax < c.RateLimit.AccountPauseMin {
		errs = append(errs, errors.New("account pause window is invalid"))
	}

	if c.Feed.OutputPath == "" {
		errs = append(errs, errors.New("feed output path is required"))
	}
	if c.Feed.Title == "" {
		errs = append(errs, errors.New("feed title is required"))
	}
	if err := validateHTTPURL(c.Feed.Link); err != nil {
		errs = append(errs, fmt.Errorf("feed link: %w", err))
	}
	if c.Feed.PreviewLength <= 0 {
		errs = append(errs, errors.New("preview length must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url host is required")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if instances, ok := flags["instance"].([]string); ok && len(instances) > 0 {
		c.Nitter.Instances = instances
	}
	if lists, ok := flags["list"].([]string); ok && len(lists) > 0 {
		c.Lists.URLs = lists
	}
	if cacheFile, ok := flags["cache"].(string); ok && cacheFile != "" {
		c.Lists.CacheFile = cacheFile
	}
	if refresh, ok := flags["refresh"].(bool); ok {
		c.Lists.ForceRefresh = refresh
	}
	if perAccount, ok := flags["per-account"].(int); ok && perAccount > 0 {
		c.Scrape.PostsPerAccount = perAccount
	}
	if topN, ok := flags["top"].(int); ok && topN > 0 {
		c.Scrape.TopN = topN
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Feed.OutputPath = output
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(xdg.ConfigHome, "nitterfeed", ".env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
