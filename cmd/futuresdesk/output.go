package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/ShayCichocki/futuresdesk/internal/api"
	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	c.Printf("  %s ", symbol)
	fmt.Println(message)
}

// printSummary prints the end-of-run statistics.
func printSummary(res *orchestrator.Result) {
	s := res.State
	sum := s.Summary()

	fmt.Println()
	color.New(color.Bold).Printf("Analysis of %s", s.Symbol)
	if s.Keyword != "" && s.Keyword != s.Symbol {
		color.New(color.Bold).Printf(" (%s)", s.Keyword)
	}
	fmt.Printf("  run %s  %s\n", res.RunID, formatDuration(res.Duration))

	for _, slot := range sum.Slots {
		switch {
		case slot.Succeeded:
			printStatus("✓", fmt.Sprintf("%-20s %d entr%s", slot.Slot, slot.Entries, plural(slot.Entries)), color.FgGreen)
		case slot.Entries > 0:
			printStatus("✗", fmt.Sprintf("%-20s failed", slot.Slot), color.FgRed)
		default:
			printStatus("·", fmt.Sprintf("%-20s not run", slot.Slot), color.FgHiBlack)
		}
	}

	fmt.Println()
	fmt.Printf("  Succeeded:     %d/%d\n", sum.Succeeded, sum.Total)
	fmt.Printf("  Phase 1 ready: %t\n", sum.FirstPhaseReady)
	fmt.Printf("  Phase 2 ready: %t\n", sum.SecondPhaseReady)
	fmt.Printf("  Final report:  %d chars\n", sum.ReportBytes)
	if sum.ReportPath != "" {
		fmt.Printf("  Saved to:      %s\n", sum.ReportPath)
	}
	if !res.Aggregated {
		printStatus("⚠", "Ended before the final report: a phase did not fill every slot", color.FgYellow)
	}

	if len(sum.Errors) > 0 {
		fmt.Println()
		color.New(color.FgYellow).Printf("  Errors (%d):\n", len(sum.Errors))
		for _, e := range sum.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
}

// printUsage prints token usage per analyst role.
func printUsage(l *api.UsageLedger) {
	roles := l.Roles()
	if len(roles) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  Token usage:")
	for _, role := range roles {
		u := l.Role(role)
		fmt.Printf("    %-12s %3d calls  %7d in  %6d out\n", role, u.Calls, u.InputTokens, u.OutputTokens)
	}
	t := l.Total()
	fmt.Printf("    %-12s %3d calls  %7d in  %6d out\n", "total", t.Calls, t.InputTokens, t.OutputTokens)
}

// printReport prints the final report body, rendered as Markdown when stdout
// is a terminal.
func printReport(s *models.SharedState) {
	if s.FinalReport == "" {
		return
	}
	fmt.Println()
	fmt.Print(renderReport(s.FinalReport, isatty.IsTerminal(os.Stdout.Fd())))
}

// renderReport returns md styled for the terminal, or framed plain text when
// tty is false or rendering fails.
func renderReport(md string, tty bool) string {
	if tty {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(reportWidth),
		)
		if err == nil {
			if out, err := r.Render(md); err == nil {
				return out
			}
		}
	}
	rule := strings.Repeat("=", 60)
	return rule + "\n" + strings.TrimRight(md, "\n") + "\n" + rule + "\n"
}

const reportWidth = 100

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
