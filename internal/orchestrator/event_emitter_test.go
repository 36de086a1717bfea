package orchestrator

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

func TestEventEmitterDelivers(t *testing.T) {
	e := NewEventEmitter(4, nil)
	e.Emit(Event{Type: EventRunStarted, RunID: "r1"})
	e.Emit(Event{Type: EventRunFinished, RunID: "r1"})
	e.Close()

	var got []EventType
	for ev := range e.Events() {
		got = append(got, ev.Type)
	}
	if len(got) != 2 || got[0] != EventRunStarted || got[1] != EventRunFinished {
		t.Errorf("events = %v, want [run_started run_finished]", got)
	}
}

func TestEventEmitterDropsWhenFull(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := NewEventEmitter(1, zap.New(core))
	defer e.Close()

	e.Emit(Event{Type: EventTaskStarted})
	e.Emit(Event{Type: EventTaskCompleted})

	if n := e.DroppedCount(); n != 1 {
		t.Errorf("DroppedCount() = %d, want 1", n)
	}
	if n := logs.FilterMessage("event channel full, dropped event").Len(); n != 1 {
		t.Errorf("drop warnings = %d, want 1", n)
	}
}

func TestEventEmitterIgnoresEmitAfterClose(t *testing.T) {
	e := NewEventEmitter(1, nil)
	e.Close()
	e.Close()
	e.Emit(Event{Type: EventRunStarted})
	if n := e.DroppedCount(); n != 0 {
		t.Errorf("DroppedCount() = %d, want 0", n)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	var a, b int
	sink := MultiSink{SinkFunc(func(Event) { a++ }), nil, SinkFunc(func(Event) { b++ })}
	sink.Emit(Event{Type: EventRouted})
	if a != 1 || b != 1 {
		t.Errorf("deliveries = (%d, %d), want (1, 1)", a, b)
	}
}

func TestLogSinkLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewLogSink(zap.New(core))

	sink.Emit(Event{Type: EventTaskStarted, RunID: "r", Task: "news_agent"})
	sink.Emit(Event{Type: EventTaskFailed, RunID: "r", Task: "news_agent", Error: "boom"})
	sink.Emit(Event{Type: EventBarrierEvaluated, RunID: "r", Ready: false, Filled: 2, Expected: 3})
	sink.Emit(Event{Type: EventRunFinished, RunID: "r", Summary: &models.RunSummary{Succeeded: 4, Total: 5}})

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("log entries = %d, want 4", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.WarnLevel, zapcore.InfoLevel}
	for i, want := range wantLevels {
		if entries[i].Level != want {
			t.Errorf("entry %d (%s) level = %s, want %s", i, entries[i].Message, entries[i].Level, want)
		}
	}
	if entries[0].LoggerName != "orchestrator" {
		t.Errorf("LoggerName = %q, want %q", entries[0].LoggerName, "orchestrator")
	}
	fields := entries[3].ContextMap()
	if fields["succeeded"] != int64(4) || fields["total"] != int64(5) {
		t.Errorf("run_finished fields = %v", fields)
	}
}
