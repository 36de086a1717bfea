package state

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
)

// Recorder is an EventSink that appends every event to the history database.
// Write failures are logged and counted; they never reach the orchestrator.
type Recorder struct {
	store  EventStore
	logger *zap.Logger

	mu       sync.Mutex
	failures int
	firstErr error
}

var _ orchestrator.EventSink = (*Recorder)(nil)

// NewRecorder creates a recorder writing to store.
func NewRecorder(store EventStore, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger.Named("history")}
}

// Emit stores ev.
func (r *Recorder) Emit(ev orchestrator.Event) {
	if err := r.store.AppendEvent(ev); err != nil {
		r.mu.Lock()
		r.failures++
		if r.firstErr == nil {
			r.firstErr = err
		}
		r.mu.Unlock()
		r.logger.Warn("record event failed",
			zap.String("run_id", ev.RunID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// Failures returns the number of failed writes and the first failure.
func (r *Recorder) Failures() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures, r.firstErr
}
