package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if len(config.Nitter.Instances) != 5 {
		t.Errorf("Expected 5 default instances, got %d", len(config.Nitter.Instances))
	}

	if config.Lists.CacheRetention != 7*24*time.Hour {
		t.Errorf("Expected default cache retention to be 7 days, got %v", config.Lists.CacheRetention)
	}

	if config.Scrape.PostsPerAccount != 3 {
		t.Errorf("Expected default posts per account to be 3, got %d", config.Scrape.PostsPerAccount)
	}

	if config.Scrape.TopN != 100 {
		t.Errorf("Expected default top n to be 100, got %d", config.Scrape.TopN)
	}

	if config.Feed.OutputPath != "tech_ai_twitter.xml" {
		t.Errorf("Expected default output path to be tech_ai_twitter.xml, got %s", config.Feed.OutputPath)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestDefaultInstancesNotShared(t *testing.T) {
	config := DefaultConfig()
	config.Nitter.Instances[0] = "https://changed.example"

	assert.Equal(t, "https://nitter.poast.org", DefaultInstances[0])
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NITTERFEED_INSTANCES", "https://a.example, https://b.example")
	t.Setenv("NITTERFEED_LISTS", "123,456")
	t.Setenv("NITTERFEED_CACHE_FILE", "/tmp/members.json")
	t.Setenv("NITTERFEED_OUTPUT", "/tmp/out.xml")
	t.Setenv("NITTERFEED_TOP_N", "25")
	t.Setenv("NITTERFEED_REQUEST_TIMEOUT", "5s")
	t.Setenv("NITTERFEED_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.Nitter.Instances)
	assert.Equal(t, []string{"123", "456"}, config.Lists.URLs)
	assert.Equal(t, "/tmp/members.json", config.Lists.CacheFile)
	assert.Equal(t, "/tmp/out.xml", config.Feed.OutputPath)
	assert.Equal(t, 25, config.Scrape.TopN)
	assert.Equal(t, 5*time.Second, config.Nitter.RequestTimeout)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("NITTERFEED_REQUEST_TIMEOUT", "soon")

	config := DefaultConfig()
	assert.Error(t, config.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "no instances",
			mutate:    func(c *Config) { c.Nitter.Instances = nil },
			wantError: true,
		},
		{
			name:      "instance without scheme",
			mutate:    func(c *Config) { c.Nitter.Instances = []string{"nitter.net"} },
			wantError: true,
		},
		{
			name:      "probe timeout above 10s",
			mutate:    func(c *Config) { c.Nitter.ProbeTimeout = 30 * time.Second },
			wantError: true,
		},
		{
			name:      "no lists",
			mutate:    func(c *Config) { c.Lists.URLs = nil },
			wantError: true,
		},
		{
			name:      "inverted pause window",
			mutate:    func(c *Config) { c.RateLimit.ListPauseMax = time.Second },
			wantError: true,
		},
		{
			name:      "zero top n",
			mutate:    func(c *Config) { c.Scrape.TopN = 0 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"instance":    []string{"https://mirror.example"},
		"list":        []string{"99"},
		"cache":       "/flag/cache.json",
		"refresh":     true,
		"per-account": 5,
		"top":         10,
		"output":      "/flag/feed.xml",
		"log-level":   "error",
	}

	config.MergeCommandLineFlags(flags)

	assert.Equal(t, []string{"https://mirror.example"}, config.Nitter.Instances)
	assert.Equal(t, []string{"99"}, config.Lists.URLs)
	assert.Equal(t, "/flag/cache.json", config.Lists.CacheFile)
	assert.True(t, config.Lists.ForceRefresh)
	assert.Equal(t, 5, config.Scrape.PostsPerAccount)
	assert.Equal(t, 10, config.Scrape.TopN)
	assert.Equal(t, "/flag/feed.xml", config.Feed.OutputPath)
	assert.Equal(t, "error", config.Logging.Level)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Lists.URLs = []string{"https://x.com/i/lists/42"}
	config.Scrape.TopN = 50
	config.Nitter.RequestTimeout = 7 * time.Second

	require.NoError(t, config.Save(configPath))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(configPath))

	assert.Equal(t, []string{"https://x.com/i/lists/42"}, loaded.Lists.URLs)
	assert.Equal(t, 50, loaded.Scrape.TopN)
	assert.Equal(t, 7*time.Second, loaded.Nitter.RequestTimeout)
}

func TestLoadFromFileDurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
lists:
  cache_retention: 72h
scrape:
  max_post_age: 12h
rate_limit:
  account_pause_min: 0s
  account_pause_max: 0s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, 72*time.Hour, config.Lists.CacheRetention)
	assert.Equal(t, 12*time.Hour, config.Scrape.MaxPostAge)
	assert.Equal(t, time.Duration(0), config.RateLimit.AccountPauseMax)
	assert.NoError(t, config.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  output_path: from-file.xml\nscrape:\n  top_n: 30\n"), 0644))

	t.Setenv("NITTERFEED_OUTPUT", "from-env.xml")

	config, err := Load(path, map[string]interface{}{"top": 7})
	require.NoError(t, err)

	assert.Equal(t, "from-env.xml", config.Feed.OutputPath)
	assert.Equal(t, 7, config.Scrape.TopN)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nitter: [unclosed"), 0644))

	_, err := Load(path, nil)
	assert.Error(t, err)
}
