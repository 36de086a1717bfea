package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/futuresdesk/internal/signals"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running analysis in this directory to stop",
	Long: `Ask a running analysis started from this directory to stop.

Tasks in flight are canceled and recorded as failures. The remaining
steps fail fast and the run ends with the state accumulated so far.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := signals.SendKill(cwd); err != nil {
			return fmt.Errorf("send stop request: %w", err)
		}
		printStatus("✓", "Stop requested", color.FgGreen)
		return nil
	},
}
