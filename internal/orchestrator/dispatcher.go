package orchestrator

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// Dispatcher fans a phase out into one concurrent invocation per task.
type Dispatcher struct {
	// limit caps concurrently running tasks. Zero or less means unlimited.
	limit int
	sink  EventSink
	now   func() time.Time
}

// NewDispatcher creates a dispatcher emitting task events to sink.
func NewDispatcher(limit int, sink EventSink) *Dispatcher {
	if sink == nil {
		sink = NopSink{}
	}
	return &Dispatcher{limit: limit, sink: sink, now: time.Now}
}

// Completion is one task's committed-to-be outcome.
type Completion struct {
	Task   string
	Entry  models.ResultEntry
	Update models.Update
}

// Dispatch runs every task of the phase against its own copy of snapshot and
// blocks until all of them have returned. Completions are returned in arrival
// order. Tasks never see each other's in-flight results; the caller commits the
// updates after Dispatch returns.
func (d *Dispatcher) Dispatch(ctx context.Context, runID string, phase Phase, snapshot *models.SharedState) []Completion {
	var (
		mu          sync.Mutex
		completions = make([]Completion, 0, len(phase.Tasks))
	)

	var g errgroup.Group
	if d.limit > 0 {
		g.SetLimit(d.limit)
	}

	for _, task := range phase.Tasks {
		view := snapshot.Clone()
		g.Go(func() error {
			start := d.now()
			d.sink.Emit(Event{
				Type:      EventTaskStarted,
				RunID:     runID,
				Phase:     phase.Name,
				Task:      task.Name,
				Slot:      task.Slot,
				Timestamp: start,
			})

			entry, update := task.Invoke(ctx, view)

			ev := Event{
				Type:      EventTaskCompleted,
				RunID:     runID,
				Phase:     phase.Name,
				Task:      task.Name,
				Slot:      task.Slot,
				Duration:  d.now().Sub(start),
				Timestamp: d.now(),
			}
			if !entry.OK() {
				ev.Type = EventTaskFailed
				ev.Error = entry.Error
			}
			d.sink.Emit(ev)

			mu.Lock()
			completions = append(completions, Completion{Task: task.Name, Entry: entry, Update: update})
			mu.Unlock()

			// Failures are data; the group never short-circuits.
			return nil
		})
	}

	_ = g.Wait()
	return completions
}
