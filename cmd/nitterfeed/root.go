package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"nitterfeed/pkg/config"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	quiet      bool
	verbose    bool

	// Run flags shared by generate and members
	instances  []string
	lists      []string
	cacheFile  string
	refresh    bool
	perAccount int
	topN       int
	outputPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nitterfeed",
	Short: "Turn curated lists into a ranked RSS digest",
	Long: `nitterfeed scrapes the members of curated social-media lists through a public
Nitter mirror, ranks their recent posts by engagement and writes an RSS 2.0 feed.

A run:
  - picks the first reachable mirror
  - resolves list members (cached for 7 days)
  - fetches the latest posts of every member
  - keeps the 100 most engaging posts from the last 24 hours
  - writes the feed atomically, or a fallback feed if anything goes wrong

Running nitterfeed without a subcommand is the same as 'nitterfeed generate'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
	},
	RunE: runGenerate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("nitterfeed", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.nitterfeed.yaml or "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show structured logs on the console")

	rootCmd.PersistentFlags().StringSliceVar(&instances, "instance", nil, "mirror base URL to try, in order (repeatable)")
	rootCmd.PersistentFlags().StringSliceVar(&lists, "list", nil, "list URL or id to follow (repeatable)")
	rootCmd.PersistentFlags().StringVar(&cacheFile, "cache", "", "membership cache file")
	rootCmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "ignore a fresh membership cache")

	rootCmd.Flags().IntVar(&perAccount, "per-account", 0, "timeline items examined per account (default 3)")
	rootCmd.Flags().IntVar(&topN, "top", 0, "maximum number of posts in the feed (default 100)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "feed output path")

	rootCmd.SetVersionTemplate(`nitterfeed {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// collectFlags returns the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects.
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("instance") {
		flags["instance"] = instances
	}
	if changed("list") {
		flags["list"] = lists
	}
	if changed("cache") {
		flags["cache"] = cacheFile
	}
	if changed("refresh") {
		flags["refresh"] = refresh
	}
	if changed("per-account") {
		flags["per-account"] = perAccount
	}
	if changed("top") {
		flags["top"] = topN
	}
	if changed("output") {
		flags["output"] = outputPath
	}
	if changed("log-file") {
		flags["log-file"] = logFile
	}

	switch {
	case changed("log-level"):
		flags["log-level"] = logLevel
	case !verbose:
		// Keep the console for progress output unless logs were asked for
		flags["log-level"] = "error"
	}

	return flags
}

// loadConfig loads configuration from all sources and initializes logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, collectFlags(cmd))
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
