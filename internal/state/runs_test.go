package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

func TestCreateAndGetRun(t *testing.T) {
	db := setupTestDB(t)

	started := time.Date(2024, 5, 8, 9, 30, 0, 0, time.UTC)
	run := &Run{ID: "run-1", Symbol: "ss", Keyword: "不锈钢", Provider: "offline", StartedAt: started}
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil")
	}
	if got.Status != RunRunning {
		t.Errorf("Status = %q, want %q", got.Status, RunRunning)
	}
	if got.Keyword != "不锈钢" || got.Provider != "offline" {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.FinishedAt != nil || got.Snapshot != nil {
		t.Error("unfinished run has finish data")
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	got, err := db.GetRun("missing")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetRun(missing) = %+v, want nil", got)
	}
}

func TestGetRun_Prefix(t *testing.T) {
	db := setupTestDB(t)
	for _, id := range []string{"abc123", "abd456"} {
		if err := db.CreateRun(&Run{ID: id, Symbol: "ss"}); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	got, err := db.GetRun("abc")
	if err != nil || got == nil || got.ID != "abc123" {
		t.Errorf("GetRun(abc) = %+v, %v", got, err)
	}
	if _, err := db.GetRun("ab"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("GetRun(ab) error = %v, want ambiguous", err)
	}
}

func TestFinishRun(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(&Run{ID: "run-1", Symbol: "ss"}); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	s := models.NewSharedState("ss", "不锈钢")
	if err := s.Apply(models.Update{}.
		Append(models.SlotNews, models.Success("digest")).
		Append(models.SlotSentiment, models.Failure("boom")).
		WithError("sentiment analysis failed: boom").
		WithFinalReport("report").
		WithReportPath("reports/summary.md")); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if err := db.FinishRun("run-1", RunCompleted, s, nil); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunCompleted {
		t.Errorf("Status = %q, want %q", got.Status, RunCompleted)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}
	if got.Succeeded != 1 || got.Total != 5 {
		t.Errorf("Succeeded/Total = %d/%d, want 1/5", got.Succeeded, got.Total)
	}
	if got.ReportPath != "reports/summary.md" {
		t.Errorf("ReportPath = %q", got.ReportPath)
	}
	if got.Snapshot == nil || got.Snapshot.FinalReport != "report" || len(got.Snapshot.Errors) != 1 {
		t.Errorf("Snapshot = %+v", got.Snapshot)
	}
}

func TestFinishRun_Fault(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(&Run{ID: "run-1", Symbol: "ss"}); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if err := db.FinishRun("run-1", RunFaulted, nil, errors.New("orchestrator fault in run: panic: x")); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	got, _ := db.GetRun("run-1")
	if got.Status != RunFaulted || got.Snapshot != nil || !strings.Contains(got.Error, "panic") {
		t.Errorf("run = %+v", got)
	}
}

func TestFinishRun_Unknown(t *testing.T) {
	db := setupTestDB(t)
	if err := db.FinishRun("missing", RunCompleted, nil, nil); err == nil {
		t.Error("FinishRun(missing) should fail")
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := db.CreateRun(&Run{ID: id, Symbol: "ss", StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "third" || runs[1].ID != "second" {
		t.Errorf("ListRuns(2) = %v", runIDs(runs))
	}

	all, _ := db.ListRuns(0)
	if len(all) != 3 {
		t.Errorf("ListRuns(0) returned %d runs, want 3", len(all))
	}
}

func TestAppendAndListEvents(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(&Run{ID: "run-1", Symbol: "ss"}); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	ts := time.Date(2024, 5, 8, 9, 30, 0, 0, time.UTC)
	sum := models.NewSharedState("ss", "").Summary()
	events := []orchestrator.Event{
		{Type: orchestrator.EventRunStarted, RunID: "run-1", State: "START", Timestamp: ts},
		{Type: orchestrator.EventTaskFailed, RunID: "run-1", Task: "news_agent", Slot: models.SlotNews,
			Error: "timed out after 1s", Duration: time.Second, Timestamp: ts.Add(time.Second)},
		{Type: orchestrator.EventRunFinished, RunID: "run-1", State: "END", Summary: &sum, Timestamp: ts.Add(2 * time.Second)},
	}
	for _, ev := range events {
		if err := db.AppendEvent(ev); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}

	got, err := db.ListEvents("run-1")
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListEvents returned %d events, want 3", len(got))
	}
	if got[1].Event.Task != "news_agent" || got[1].Event.Error != "timed out after 1s" || got[1].Event.Duration != time.Second {
		t.Errorf("event = %+v", got[1].Event)
	}
	if got[2].Event.Summary == nil || got[2].Event.Summary.Total != 5 {
		t.Errorf("summary not preserved: %+v", got[2].Event.Summary)
	}
	if !got[0].CreatedAt.Equal(ts) || got[0].Seq >= got[1].Seq {
		t.Errorf("ordering: %+v", got)
	}
}

func TestBarrierNotReadyIsStored(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(&Run{ID: "run-1", Symbol: "ss"}); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	ev := orchestrator.Event{Type: orchestrator.EventBarrierEvaluated, RunID: "run-1",
		Phase: "first_phase", Ready: false, Filled: 0, Expected: 3, Timestamp: time.Now()}
	if err := db.AppendEvent(ev); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}

	var payload string
	if err := db.QueryRow(`SELECT payload FROM events WHERE run_id = ?`, "run-1").Scan(&payload); err != nil {
		t.Fatalf("scan payload: %v", err)
	}
	for _, want := range []string{`"ready":false`, `"filled":0`, `"expected":3`} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload %s missing %s", payload, want)
		}
	}
}

func TestAppendEvent_UnknownRun(t *testing.T) {
	db := setupTestDB(t)
	if err := db.AppendEvent(orchestrator.Event{Type: orchestrator.EventRunStarted, RunID: "missing"}); err == nil {
		t.Error("AppendEvent for an unknown run should fail the foreign key")
	}
}

func TestRecorderRecordsRun(t *testing.T) {
	db := setupTestDB(t)
	if err := db.CreateRun(&Run{ID: "run-1", Symbol: "ss"}); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	plan, err := orchestrator.NewPlan(
		orchestrator.Aggregate{Name: "summary_agent", Run: func(_ context.Context, _ *models.SharedState) (orchestrator.AggregateResult, error) {
			return orchestrator.AggregateResult{Report: "report"}, nil
		}},
		orchestrator.Phase{Name: "first_phase", Flag: models.FlagFirstPhaseReady, Tasks: []orchestrator.Task{
			{Name: "news_agent", Slot: models.SlotNews, Run: func(context.Context, *models.SharedState) (string, error) { return "ok", nil }},
			{Name: "sentiment_agent", Slot: models.SlotSentiment, Run: func(context.Context, *models.SharedState) (string, error) { return "ok", nil }},
		}},
	)
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}

	rec := NewRecorder(db, zap.NewNop())
	o, err := orchestrator.New(orchestrator.RequiredConfig{Plan: plan}, orchestrator.WithSink(rec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res, err := o.Run(context.Background(), orchestrator.Request{Symbol: "ss", RunID: "run-1"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n, err := rec.Failures(); n != 0 {
		t.Fatalf("recorder failures = %d, first = %v", n, err)
	}

	got, _ := db.ListEvents("run-1")
	if len(got) == 0 || got[0].Event.Type != orchestrator.EventRunStarted || got[len(got)-1].Event.Type != orchestrator.EventRunFinished {
		t.Errorf("events = %v", eventTypes(got))
	}
	if err := db.FinishRun("run-1", RunCompleted, res.State, nil); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
}

type failingStore struct{}

func (failingStore) AppendEvent(orchestrator.Event) error      { return errors.New("disk full") }
func (failingStore) ListEvents(string) ([]EventRecord, error) { return nil, nil }

func TestRecorderCountsFailures(t *testing.T) {
	rec := NewRecorder(failingStore{}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Emit(orchestrator.Event{Type: orchestrator.EventTaskStarted, RunID: "r"})
		}()
	}
	wg.Wait()

	n, err := rec.Failures()
	if n != 5 || err == nil || err.Error() != "disk full" {
		t.Errorf("Failures() = %d, %v", n, err)
	}
}

func runIDs(runs []Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}

func eventTypes(recs []EventRecord) []orchestrator.EventType {
	out := make([]orchestrator.EventType, len(recs))
	for i, r := range recs {
		out[i] = r.Event.Type
	}
	return out
}
