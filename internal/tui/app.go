package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// maxLogLines is how many recent activity lines are shown.
const maxLogLines = 8

// TaskStatus is the display status of one task row.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskRunning
	TaskDone
	TaskFailed
)

// EventMsg wraps an orchestrator event for the TUI.
type EventMsg struct {
	Event orchestrator.Event
}

// StreamClosedMsg signals that the event stream has ended.
type StreamClosedMsg struct{}

// TaskRow is one task in the progress view.
type TaskRow struct {
	Name     string
	Status   TaskStatus
	Duration time.Duration
	Error    string
}

// PhaseView is one phase in the progress view.
type PhaseView struct {
	Name     string
	Tasks    []*TaskRow
	Decision orchestrator.Decision
	Filled   int
	Expected int
}

// LogEntry represents a line of the activity log.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	Failed    bool
}

// App is the bubbletea model for the progress view.
type App struct {
	title  string
	events <-chan orchestrator.Event
	onQuit func()

	runID     string
	state     string
	phases    []*PhaseView
	aggregate *TaskRow
	logs      []LogEntry
	summary   *models.RunSummary
	elapsed   time.Duration

	spinner  spinner.Model
	width    int
	done     bool
	quitting bool
}

// NewApp creates an App reading from events.
func NewApp(events <-chan orchestrator.Event, opts Options) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle
	return &App{
		title:   opts.Title,
		events:  events,
		onQuit:  opts.OnQuit,
		spinner: s,
	}
}

// waitForEvent reads the next event from the stream.
func waitForEvent(events <-chan orchestrator.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, waitForEvent(a.events))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !a.quitting && a.onQuit != nil {
				a.onQuit()
			}
			a.quitting = true
			if a.done {
				return a, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case EventMsg:
		a.apply(msg.Event)
		return a, waitForEvent(a.events)

	case StreamClosedMsg:
		a.done = true
		return a, tea.Quit
	}

	return a, nil
}

// apply folds one event into the view state.
func (a *App) apply(ev orchestrator.Event) {
	if ev.RunID != "" {
		a.runID = ev.RunID
	}
	if ev.State != "" {
		a.state = ev.State
	}

	switch ev.Type {
	case orchestrator.EventPhaseDispatched:
		p := a.phase(ev.Phase)
		for _, name := range ev.Tasks {
			if p.task(name) == nil {
				p.Tasks = append(p.Tasks, &TaskRow{Name: name})
			}
		}
		a.log(ev, fmt.Sprintf("%s dispatched: %s", ev.Phase, strings.Join(ev.Tasks, ", ")), false)

	case orchestrator.EventTaskStarted:
		a.row(ev).Status = TaskRunning

	case orchestrator.EventTaskCompleted:
		r := a.row(ev)
		r.Status, r.Duration = TaskDone, ev.Duration
		a.log(ev, fmt.Sprintf("%s completed in %s", ev.Task, ev.Duration.Round(time.Millisecond)), false)

	case orchestrator.EventTaskFailed:
		r := a.row(ev)
		r.Status, r.Duration, r.Error = TaskFailed, ev.Duration, ev.Error
		a.log(ev, fmt.Sprintf("%s failed: %s", ev.Task, ev.Error), true)

	case orchestrator.EventBarrierEvaluated:
		p := a.phase(ev.Phase)
		p.Filled, p.Expected = ev.Filled, ev.Expected

	case orchestrator.EventRouted:
		a.phase(ev.Phase).Decision = ev.Decision
		a.log(ev, fmt.Sprintf("%s routed: %s", ev.Phase, ev.Decision), ev.Decision == orchestrator.DecisionEnd)

	case orchestrator.EventAggregateStarted:
		a.aggregate = &TaskRow{Name: ev.Task, Status: TaskRunning}

	case orchestrator.EventAggregateCompleted:
		if a.aggregate == nil {
			a.aggregate = &TaskRow{Name: ev.Task}
		}
		a.aggregate.Duration = ev.Duration
		if ev.Error != "" {
			a.aggregate.Status, a.aggregate.Error = TaskFailed, ev.Error
			a.log(ev, "final report failed: "+ev.Error, true)
		} else {
			a.aggregate.Status = TaskDone
			a.log(ev, "final report written: "+ev.Message, false)
		}

	case orchestrator.EventRunFinished:
		a.summary = ev.Summary
		a.elapsed = ev.Duration
	}
}

func (a *App) phase(name string) *PhaseView {
	for _, p := range a.phases {
		if p.Name == name {
			return p
		}
	}
	p := &PhaseView{Name: name}
	a.phases = append(a.phases, p)
	return p
}

func (p *PhaseView) task(name string) *TaskRow {
	for _, t := range p.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// row finds the task row for ev, adding it when dispatch was not seen.
func (a *App) row(ev orchestrator.Event) *TaskRow {
	p := a.phase(ev.Phase)
	if r := p.task(ev.Task); r != nil {
		return r
	}
	r := &TaskRow{Name: ev.Task}
	p.Tasks = append(p.Tasks, r)
	return r
}

func (a *App) log(ev orchestrator.Event, msg string, failed bool) {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	a.logs = append(a.logs, LogEntry{Timestamp: ts, Message: msg, Failed: failed})
	if len(a.logs) > maxLogLines {
		a.logs = a.logs[len(a.logs)-maxLogLines:]
	}
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	title := "futuresdesk"
	if a.title != "" {
		title += " · " + a.title
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Run:"))
	b.WriteString(valueStyle.Render(a.runID))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("State:"))
	b.WriteString(valueStyle.Render(a.state))
	b.WriteString("\n\n")

	for _, p := range a.phases {
		header := p.Name
		if p.Expected > 0 {
			header += fmt.Sprintf("  %d/%d", p.Filled, p.Expected)
		}
		if p.Decision != "" {
			header += "  → " + string(p.Decision)
		}
		b.WriteString(phaseStyle.Render(header))
		b.WriteString("\n")
		for _, t := range p.Tasks {
			b.WriteString(a.renderRow(t))
		}
		b.WriteString("\n")
	}

	if a.aggregate != nil {
		b.WriteString(phaseStyle.Render("aggregate"))
		b.WriteString("\n")
		b.WriteString(a.renderRow(a.aggregate))
		b.WriteString("\n")
	}

	if len(a.logs) > 0 {
		b.WriteString(valueStyle.Render("Activity"))
		b.WriteString("\n")
		for _, entry := range a.logs {
			style := logStyle
			if entry.Failed {
				style = failedStyle
			}
			fmt.Fprintf(&b, "  %s %s\n", logTimeStyle.Render(entry.Timestamp.Format("15:04:05")), style.Render(entry.Message))
		}
	}

	if a.summary != nil {
		fmt.Fprintf(&b, "\n%s%s\n", labelStyle.Render("Succeeded:"),
			valueStyle.Render(fmt.Sprintf("%d/%d in %s", a.summary.Succeeded, a.summary.Total, a.elapsed.Round(time.Millisecond))))
	}

	switch {
	case a.done:
	case a.quitting:
		b.WriteString(footerStyle.Render("stopping…"))
	default:
		b.WriteString(footerStyle.Render("q: stop run"))
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderRow(t *TaskRow) string {
	var icon, detail string
	switch t.Status {
	case TaskPending:
		icon = pendingStyle.Render("·")
		detail = pendingStyle.Render("pending")
	case TaskRunning:
		icon = a.spinner.View()
		detail = runningStyle.Render("running")
	case TaskDone:
		icon = doneStyle.Render("✓")
		detail = doneStyle.Render(t.Duration.Round(time.Millisecond).String())
	case TaskFailed:
		icon = failedStyle.Render("✗")
		detail = failedStyle.Render(truncate(t.Error, 60))
	}
	return fmt.Sprintf("  %s %s %s\n", icon, labelStyle.Render(t.Name), detail)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Phases returns the phases seen so far.
func (a *App) Phases() []*PhaseView { return a.phases }

// Summary returns the run summary once the run has finished.
func (a *App) Summary() *models.RunSummary { return a.summary }

// Done reports whether the event stream has closed.
func (a *App) Done() bool { return a.done }
