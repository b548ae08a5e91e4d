package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"nitterfeed/pkg/config"
	"nitterfeed/pkg/nitter"
	"nitterfeed/pkg/ui"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage nitterfeed configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (NITTERFEED_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with all defaults",
	Long: `Write a configuration file containing every option with its default value.

The file is created as '.nitterfeed.yaml' in the current directory unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Long: `Validate the effective configuration.

This command checks:
  - YAML syntax
  - Required fields and value ranges
  - List references
  - That the cache, feed and log directories can be created`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".nitterfeed.yaml"
	}

	if _, err := os.Stat(configPath); err == nil && !forceInit {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit lists.urls and feed.link in the configuration file")
	fmt.Println("2. Run 'nitterfeed config validate' to check the configuration")
	fmt.Println("3. Run 'nitterfeed probe' to see which mirrors are reachable")
	fmt.Println("4. Generate the feed with 'nitterfeed generate'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, collectFlags(cmd))
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (NITTERFEED_*)")
	fmt.Println("3. .env files")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (searched in default locations)")
	}
	fmt.Println("5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, collectFlags(cmd))
	if err != nil {
		return err
	}

	var problems []string
	for _, list := range cfg.Lists.URLs {
		if _, err := nitter.ParseListID(list); err != nil {
			problems = append(problems, err.Error())
		}
	}

	dirs := map[string]string{
		"cache": cfg.Lists.CacheFile,
		"feed":  cfg.Feed.OutputPath,
	}
	if cfg.Logging.File != "" {
		dirs["log"] = cfg.Logging.File
	}
	for name, path := range dirs {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create %s directory: %v", name, err))
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			ui.PrintWarning(p)
		}
		return fmt.Errorf("configuration has %d problem(s)", len(problems))
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Mirrors: %d\n", len(cfg.Nitter.Instances))
	fmt.Printf("  Lists: %d\n", len(cfg.Lists.URLs))
	fmt.Printf("  Cache: %s (refresh every %s)\n", cfg.Lists.CacheFile, cfg.Lists.CacheRetention)
	fmt.Printf("  Posts per account: %d, top %d\n", cfg.Scrape.PostsPerAccount, cfg.Scrape.TopN)
	fmt.Printf("  Output: %s\n", cfg.Feed.OutputPath)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
