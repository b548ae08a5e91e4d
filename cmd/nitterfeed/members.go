package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"nitterfeed/pkg/pipeline"
	"nitterfeed/pkg/ui"
)

var membersJSON bool

// membersCmd represents the members command
var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Resolve and print the accounts on the configured lists",
	Long: `Resolve list membership the same way a feed run does, using the cache when it
is fresh, and print the resulting accounts. No timelines are scraped and no feed
is written.`,
	Example: `  nitterfeed members
  nitterfeed members --refresh --json`,
	Args: cobra.NoArgs,
	RunE: runMembers,
}

func init() {
	rootCmd.AddCommand(membersCmd)
	membersCmd.Flags().BoolVar(&membersJSON, "json", false, "print accounts as a JSON array")
}

func runMembers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	if membersJSON {
		ui.SetQuietMode(true)
	}

	_, res := pipeline.NewRunner(cfg).ResolveMembers(ctx)

	if membersJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(res.Accounts)
	}

	ui.PrintInfo("Source", string(res.Source))
	ui.PrintInfo("Accounts", fmt.Sprintf("%d", len(res.Accounts)))
	for _, h := range res.Accounts {
		fmt.Printf("  @%s\n", h)
	}
	for _, f := range res.Failures {
		ui.PrintWarning(fmt.Sprintf("%s: %v", f.List, f.Err))
	}

	if len(res.Accounts) == 0 {
		return fmt.Errorf("no accounts resolved")
	}
	return nil
}
