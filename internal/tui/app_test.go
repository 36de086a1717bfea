package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

func send(a *App, evs ...orchestrator.Event) {
	for _, ev := range evs {
		a.Update(EventMsg{Event: ev})
	}
}

func TestAppTracksPhaseProgress(t *testing.T) {
	a := NewApp(nil, Options{Title: "ss 不锈钢"})

	send(a,
		orchestrator.Event{Type: orchestrator.EventRunStarted, RunID: "run-1", State: "START"},
		orchestrator.Event{Type: orchestrator.EventPhaseDispatched, State: "PHASE1_DISPATCH", Phase: "first_phase",
			Tasks: []string{"news_agent", "sentiment_agent", "fundamental_agent"}},
		orchestrator.Event{Type: orchestrator.EventTaskStarted, Phase: "first_phase", Task: "news_agent"},
		orchestrator.Event{Type: orchestrator.EventTaskCompleted, Phase: "first_phase", Task: "news_agent", Duration: 1500 * time.Millisecond},
		orchestrator.Event{Type: orchestrator.EventTaskFailed, Phase: "first_phase", Task: "sentiment_agent", Error: "rate limited"},
	)

	phases := a.Phases()
	if len(phases) != 1 || len(phases[0].Tasks) != 3 {
		t.Fatalf("phases = %+v", phases)
	}
	want := map[string]TaskStatus{
		"news_agent":        TaskDone,
		"sentiment_agent":   TaskFailed,
		"fundamental_agent": TaskPending,
	}
	for _, row := range phases[0].Tasks {
		if row.Status != want[row.Name] {
			t.Errorf("%s status = %v, want %v", row.Name, row.Status, want[row.Name])
		}
	}

	view := a.View()
	for _, s := range []string{"ss 不锈钢", "run-1", "PHASE1_DISPATCH", "first_phase", "rate limited", "q: stop run"} {
		if !strings.Contains(view, s) {
			t.Errorf("view missing %q:\n%s", s, view)
		}
	}
}

func TestAppShowsAggregateAndSummary(t *testing.T) {
	a := NewApp(nil, Options{})
	sum := models.RunSummary{Succeeded: 5, Total: 5}

	send(a,
		orchestrator.Event{Type: orchestrator.EventBarrierEvaluated, Phase: "second_phase", Filled: 2, Expected: 2, Ready: true},
		orchestrator.Event{Type: orchestrator.EventRouted, Phase: "second_phase", Decision: orchestrator.DecisionAggregate},
		orchestrator.Event{Type: orchestrator.EventAggregateStarted, Task: "summary_agent"},
		orchestrator.Event{Type: orchestrator.EventAggregateCompleted, Task: "summary_agent", Message: "reports/summary.md"},
		orchestrator.Event{Type: orchestrator.EventRunFinished, State: "END", Summary: &sum, Duration: 3 * time.Second},
	)

	if a.aggregate == nil || a.aggregate.Status != TaskDone {
		t.Errorf("aggregate = %+v", a.aggregate)
	}
	if a.Summary() == nil || a.Summary().Succeeded != 5 {
		t.Errorf("summary = %+v", a.Summary())
	}
	view := a.View()
	for _, s := range []string{"2/2", "aggregate", "reports/summary.md", "5/5"} {
		if !strings.Contains(view, s) {
			t.Errorf("view missing %q:\n%s", s, view)
		}
	}
}

func TestAppQuitCallsOnQuitOnce(t *testing.T) {
	calls := 0
	a := NewApp(nil, Options{OnQuit: func() { calls++ }})

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Error("quit before the stream closes should keep the program running")
	}
	a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if calls != 1 {
		t.Errorf("OnQuit called %d times, want 1", calls)
	}
	if !strings.Contains(a.View(), "stopping") {
		t.Error("view does not show stopping")
	}
}

func TestAppQuitsWhenStreamCloses(t *testing.T) {
	events := make(chan orchestrator.Event, 1)
	a := NewApp(events, Options{})

	events <- orchestrator.Event{Type: orchestrator.EventRunStarted, RunID: "run-1"}
	close(events)

	msg := waitForEvent(events)()
	if ev, ok := msg.(EventMsg); !ok || ev.Event.RunID != "run-1" {
		t.Fatalf("first message = %#v", msg)
	}
	msg = waitForEvent(events)()
	if _, ok := msg.(StreamClosedMsg); !ok {
		t.Fatalf("second message = %#v, want StreamClosedMsg", msg)
	}

	_, cmd := a.Update(msg)
	if !a.Done() || cmd == nil {
		t.Error("app did not finish on stream close")
	}
}

func TestLogIsBounded(t *testing.T) {
	a := NewApp(nil, Options{})
	for i := 0; i < maxLogLines*2; i++ {
		send(a, orchestrator.Event{Type: orchestrator.EventTaskCompleted, Phase: "p", Task: "t"})
	}
	if len(a.logs) != maxLogLines {
		t.Errorf("logs = %d lines, want %d", len(a.logs), maxLogLines)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate() = %q", got)
	}
}
