package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/futuresdesk/internal/config"
	"github.com/ShayCichocki/futuresdesk/internal/logging"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "futuresdesk",
	Short: "Parallel multi-analyst research for commodity futures",
	Long: `futuresdesk researches one futures variety with a desk of analysts.

Phase 1 runs the news, sentiment and fundamental analysts in parallel.
Phase 2 runs the bullish and bearish strategists in parallel on the
phase 1 reports. A summary analyst then writes the final report.

Every analyst's report is saved as Markdown under the reports directory,
and each run is recorded in the local history database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Any error that escapes a command exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Read configuration from this file instead of the default locations")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration honoring --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// newLogger builds the process logger. With quiet set, only the log file
// receives output so the TUI keeps the terminal.
func newLogger(cfg *config.Config, quiet bool) (*zap.Logger, func(), error) {
	opts := logging.Options{
		Verbose: verbose,
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
	}
	if quiet {
		return logging.Quiet(opts)
	}
	return logging.New(opts)
}
