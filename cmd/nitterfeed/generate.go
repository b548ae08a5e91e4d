package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/pipeline"
	"nitterfeed/pkg/ui"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Scrape the configured lists and write the RSS feed",
	Long: `Scrape the configured lists and write the RSS feed.

The command exits with status 0 when a feed was written normally, including an
empty feed when no accounts or posts were found. It exits with status 1 when
the run failed and the fallback feed was written instead.`,
	Example: `  # Generate with defaults
  nitterfeed generate

  # Follow two lists and keep the 50 best posts
  nitterfeed generate --list https://x.com/i/lists/1539497752140206080 --list 42 --top 50

  # Use a specific mirror and refresh the membership cache
  nitterfeed generate --instance https://nitter.net --refresh -o feed.xml`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&perAccount, "per-account", 0, "timeline items examined per account (default 3)")
	generateCmd.Flags().IntVar(&topN, "top", 0, "maximum number of posts in the feed (default 100)")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "feed output path")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ui.PrintLogo()
	ui.PrintInfo("Lists", fmt.Sprintf("%d", len(cfg.Lists.URLs)))
	for _, list := range cfg.Lists.URLs {
		ui.PrintInfo("  List", list)
	}
	ui.PrintInfo("Output", cfg.Feed.OutputPath)

	ctx, stop := signalContext()
	defer stop()

	logger.WithField("version", version).Info("nitterfeed starting")

	report, err := pipeline.NewRunner(cfg).Run(ctx)
	if err != nil {
		return err
	}

	ui.PrintHighlight(fmt.Sprintf("Done in %s: %d posts from %d accounts",
		report.Duration.Round(time.Second), report.Verified.Items, len(report.Membership.Accounts)))
	return nil
}
