package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
)

// Options configures Run.
type Options struct {
	// Title is shown in the header, e.g. the symbol and keyword.
	Title string
	// OnQuit is called once when the user asks to stop.
	OnQuit func()
	// AltScreen renders in the alternate screen buffer. The final view is
	// then cleared on exit.
	AltScreen bool
}

// Run shows the progress view until events is closed.
func Run(events <-chan orchestrator.Event, opts Options) error {
	var progOpts []tea.ProgramOption
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	_, err := tea.NewProgram(NewApp(events, opts), progOpts...).Run()
	return err
}
