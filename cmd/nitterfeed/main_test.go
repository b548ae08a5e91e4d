package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nitterfeed/pkg/config"
	"nitterfeed/pkg/feed"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/models"
	"nitterfeed/pkg/ui"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	ui.SetOutput(io.Discard)
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout)
		configFile = ""
		forceInit = false
	})
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nitterfeed.yaml")

	require.NoError(t, execute(t, "config", "init", "--config", path))

	loaded := config.DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, config.DefaultConfig().Scrape.TopN, loaded.Scrape.TopN)

	assert.Error(t, execute(t, "config", "init", "--config", path))
	assert.NoError(t, execute(t, "config", "init", "--config", path, "--force"))
}

func TestVerifyCommand(t *testing.T) {
	meta := config.DefaultConfig().Feed
	meta.OutputPath = filepath.Join(t.TempDir(), "feed.xml")

	posts := []models.PostRecord{{
		Author:    "alice",
		Text:      "A long enough post about compilers and tooling",
		URL:       "https://twitter.com/alice/status/1",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Likes:     10,
		Retweets:  2,
		Replies:   1,
	}}
	_, err := feed.NewRenderer(meta, logger.NewNopLogger()).Write(posts, time.Now())
	require.NoError(t, err)

	assert.NoError(t, execute(t, "verify", meta.OutputPath))
	assert.Error(t, execute(t, "verify", filepath.Join(t.TempDir(), "missing.xml")))
}

func TestCollectFlagsOnlyChanged(t *testing.T) {
	cmd := generateCmd
	require.NoError(t, cmd.Flags().Set("top", "7"))
	t.Cleanup(func() {
		cmd.Flags().Lookup("top").Changed = false
		topN = 0
	})

	flags := collectFlags(cmd)
	assert.Equal(t, 7, flags["top"])
	assert.NotContains(t, flags, "output")
	assert.Equal(t, "error", flags["log-level"])
}
