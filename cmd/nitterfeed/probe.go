package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"nitterfeed/pkg/logger"
	"nitterfeed/pkg/nitter"
	"nitterfeed/pkg/pipeline"
	"nitterfeed/pkg/ui"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which configured mirrors are reachable",
	Long: `Probe every configured mirror with a single GET request and report its status
and latency. Unlike a feed run, probing does not stop at the first reachable
mirror.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	client := pipeline.NewRunner(cfg).Client(logger.GetLogger())
	results := nitter.ProbeAll(ctx, client, cfg.Nitter.Instances)

	reachable := 0
	for _, r := range results {
		latency := r.Latency.Round(time.Millisecond).String()
		switch {
		case r.OK():
			reachable++
			ui.PrintSuccess(fmt.Sprintf("%s %s %s", r.URL, ui.Green(http.StatusText(r.Status)), ui.Dim(latency)))
		case r.Err != nil:
			ui.PrintWarning(fmt.Sprintf("%s %v (%s)", r.URL, r.Err, latency))
		default:
			ui.PrintWarning(fmt.Sprintf("%s status %d (%s)", r.URL, r.Status, latency))
		}
	}

	ui.PrintInfo("Reachable", fmt.Sprintf("%d/%d", reachable, len(results)))
	if reachable == 0 {
		return fmt.Errorf("no mirror reachable")
	}
	return nil
}
