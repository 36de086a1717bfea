package state

import (
	"io"
	"time"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// RunStore handles run-related persistence operations.
type RunStore interface {
	CreateRun(r *Run) error
	FinishRun(id string, status RunStatus, s *models.SharedState, runErr error) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
	PurgeOldRuns(olderThan time.Duration) (int64, error)
}

// EventStore handles event persistence.
type EventStore interface {
	AppendEvent(ev orchestrator.Event) error
	ListEvents(runID string) ([]EventRecord, error)
}

// Migrator brings a store's schema up to date.
type Migrator interface {
	Migrate() error
	SchemaVersion() (int, error)
}

// HistoryStore is the full run-history backend.
type HistoryStore interface {
	io.Closer
	Migrator
	RunStore
	EventStore
}

var (
	_ HistoryStore = (*DB)(nil)
	_ RunStore     = (*DB)(nil)
	_ EventStore   = (*DB)(nil)
)
