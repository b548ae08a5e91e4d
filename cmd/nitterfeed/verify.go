package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"nitterfeed/pkg/feed"
	"nitterfeed/pkg/ui"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Parse a generated feed and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := feed.Verify(args[0])
		if err != nil {
			return err
		}

		ui.PrintSuccess("Feed is valid")
		ui.PrintInfo("Path", result.Path)
		ui.PrintInfo("Type", result.FeedType)
		ui.PrintInfo("Title", result.Title)
		ui.PrintInfo("Items", fmt.Sprintf("%d", result.Items))
		ui.PrintInfo("Size", humanize.Bytes(uint64(result.Bytes)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
