package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/internal/state"
)

var (
	historyLimit  int
	historyEvents bool
	historyPurge  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded analysis runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run",
	Long:  "Show one recorded run. A unique prefix of the run ID is enough.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.Flags().StringVar(&historyPurge, "purge", "", "Delete runs older than this age, e.g. 30d or 720h")
	historyShowCmd.Flags().BoolVar(&historyEvents, "events", false, "Also print the run's event log")
	historyCmd.AddCommand(historyShowCmd)
}

func openHistoryForRead() (*state.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.History.Enabled {
		return nil, errors.New("run history is disabled (history.enabled: false)")
	}
	return openHistory(cfg)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := openHistoryForRead()
	if err != nil {
		return err
	}
	defer db.Close()

	if historyPurge != "" {
		age, err := parseAge(historyPurge)
		if err != nil {
			return err
		}
		n, err := db.PurgeOldRuns(age)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d run(s)\n", n)
		return nil
	}

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYMBOL\tPROVIDER\tSTATUS\tOK\tSTARTED\tDURATION")
	for _, r := range runs {
		dur := "-"
		if r.FinishedAt != nil {
			dur = formatDuration(r.FinishedAt.Sub(r.StartedAt))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			shortID(r.ID), r.Symbol, r.Provider, statusText(r.Status),
			r.Succeeded, r.Total, r.StartedAt.Local().Format("2006-01-02 15:04"), dur)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	db, err := openHistoryForRead()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := db.GetRun(args[0])
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("run %s not found", args[0])
	}

	color.New(color.Bold).Printf("Run %s\n", r.ID)
	fmt.Printf("  Symbol:   %s (%s)\n", r.Symbol, r.Keyword)
	fmt.Printf("  Provider: %s\n", r.Provider)
	fmt.Printf("  Status:   %s\n", statusText(r.Status))
	fmt.Printf("  Started:  %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if r.FinishedAt != nil {
		fmt.Printf("  Finished: %s (%s)\n", r.FinishedAt.Local().Format("2006-01-02 15:04:05"), formatDuration(r.FinishedAt.Sub(r.StartedAt)))
	}
	fmt.Printf("  Slots:    %d/%d succeeded\n", r.Succeeded, r.Total)
	if r.ReportPath != "" {
		fmt.Printf("  Report:   %s\n", r.ReportPath)
	}
	if r.Error != "" {
		fmt.Printf("  Error:    %s\n", color.RedString(r.Error))
	}
	if r.Snapshot != nil && len(r.Snapshot.Errors) > 0 {
		color.New(color.FgYellow).Printf("  Task errors (%d):\n", len(r.Snapshot.Errors))
		for _, e := range r.Snapshot.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	if !historyEvents {
		return nil
	}
	events, err := db.ListEvents(r.ID)
	if err != nil {
		return err
	}
	fmt.Println()
	color.New(color.Bold).Printf("Events (%d)\n", len(events))
	for _, rec := range events {
		ev := rec.Event
		line := fmt.Sprintf("%s  %-20s %s", ev.Timestamp.Local().Format("15:04:05.000"), ev.Type, ev.State)
		if ev.Task != "" {
			line += " " + ev.Task
		}
		if ev.Type == orchestrator.EventBarrierEvaluated {
			line += fmt.Sprintf(" %s ready=%t %d/%d", ev.Phase, ev.Ready, ev.Filled, ev.Expected)
		}
		if ev.Decision != "" {
			line += " -> " + string(ev.Decision)
		}
		if ev.Error != "" {
			line += " " + color.RedString(ev.Error)
		}
		fmt.Println(line)
	}
	return nil
}

func statusText(s state.RunStatus) string {
	switch s {
	case state.RunCompleted:
		return color.GreenString(string(s))
	case state.RunEndedEarly, state.RunCanceled:
		return color.YellowString(string(s))
	case state.RunFaulted:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}

// parseAge accepts Go durations plus a day suffix, e.g. 30d.
func parseAge(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid age %q", s)
	}
	return d, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
