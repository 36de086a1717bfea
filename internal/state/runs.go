package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// RunStatus represents how a run ended.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	// RunCompleted reached END through aggregation.
	RunCompleted RunStatus = "completed"
	// RunEndedEarly reached END through a fail-open router exit.
	RunEndedEarly RunStatus = "ended_early"
	RunCanceled   RunStatus = "canceled"
	RunFaulted    RunStatus = "faulted"
)

// Run is one recorded analysis run.
type Run struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Keyword    string     `json:"keyword"`
	Provider   string     `json:"provider"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Succeeded  int        `json:"succeeded"`
	Total      int        `json:"total"`
	ReportPath string     `json:"report_path,omitempty"`
	Error      string     `json:"error,omitempty"`
	// Snapshot is the final SharedState. Nil until the run finishes.
	Snapshot *models.SharedState `json:"snapshot,omitempty"`
}

// EventRecord is one stored orchestrator event.
type EventRecord struct {
	Seq       int64              `json:"seq"`
	RunID     string             `json:"run_id"`
	CreatedAt time.Time          `json:"created_at"`
	Event     orchestrator.Event `json:"event"`
}

// CreateRun records the start of a run.
func (db *DB) CreateRun(r *Run) error {
	if r.Status == "" {
		r.Status = RunRunning
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO runs (id, symbol, keyword, provider, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Symbol, r.Keyword, r.Provider, string(r.Status), formatTime(r.StartedAt))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun records how a run ended along with its final state. The state may
// be nil when the run faulted before producing one.
func (db *DB) FinishRun(id string, status RunStatus, s *models.SharedState, runErr error) error {
	var (
		snapshot   sql.NullString
		succeeded  int
		total      int
		reportPath string
		errText    string
	)
	if s != nil {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		snapshot = sql.NullString{String: string(data), Valid: true}
		sum := s.Summary()
		succeeded, total, reportPath = sum.Succeeded, sum.Total, sum.ReportPath
	}
	if runErr != nil {
		errText = runErr.Error()
	}

	res, err := db.Exec(`
		UPDATE runs SET status = ?, finished_at = ?, succeeded = ?, total = ?,
			report_path = ?, error = ?, snapshot = ?
		WHERE id = ?
	`, string(status), formatTime(time.Now()), succeeded, total, reportPath, errText, snapshot, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: run %s not found", id)
	}
	return nil
}

const runColumns = `id, symbol, keyword, provider, status, started_at, finished_at,
	succeeded, total, report_path, error, snapshot`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r          Run
		startedAt  string
		finishedAt sql.NullString
		snapshot   sql.NullString
	)
	err := row.Scan(&r.ID, &r.Symbol, &r.Keyword, &r.Provider, &r.Status, &startedAt, &finishedAt,
		&r.Succeeded, &r.Total, &r.ReportPath, &r.Error, &snapshot)
	if err != nil {
		return nil, err
	}
	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("run %s started_at: %w", r.ID, err)
	}
	if r.FinishedAt, err = parseNullableTime(finishedAt); err != nil {
		return nil, fmt.Errorf("run %s finished_at: %w", r.ID, err)
	}
	if snapshot.Valid {
		var s models.SharedState
		if err := json.Unmarshal([]byte(snapshot.String), &s); err != nil {
			return nil, fmt.Errorf("decode snapshot of run %s: %w", r.ID, err)
		}
		r.Snapshot = &s
	}
	return &r, nil
}

// GetRun retrieves a run by ID. It returns nil, nil when no run matches.
// A unique ID prefix is accepted.
func (db *DB) GetRun(id string) (*Run, error) {
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		id, id+"%", id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("get run: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	switch {
	case len(found) == 0:
		return nil, nil
	case found[0].ID == id || len(found) == 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("get run: id prefix %q is ambiguous", id)
	}
}

// ListRuns lists runs, most recent first. A non-positive limit lists all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// AppendEvent stores one event for its run.
func (db *DB) AppendEvent(ev orchestrator.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	created := ev.Timestamp
	if created.IsZero() {
		created = time.Now()
	}
	_, err = db.Exec(`
		INSERT INTO events (run_id, type, state, phase, task, message, error, duration_ms, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.RunID, string(ev.Type), ev.State, ev.Phase, ev.Task, ev.Message, ev.Error,
		ev.Duration.Milliseconds(), string(payload), formatTime(created))
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents returns a run's events in the order they were recorded.
func (db *DB) ListEvents(runID string) ([]EventRecord, error) {
	rows, err := db.Query(`
		SELECT seq, run_id, payload, created_at FROM events WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			rec       EventRecord
			payload   string
			createdAt string
		)
		if err := rows.Scan(&rec.Seq, &rec.RunID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Event); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", rec.Seq, err)
		}
		created, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("event %d created_at: %w", rec.Seq, err)
		}
		rec.CreatedAt = created
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PurgeOldRuns deletes runs started more than olderThan ago; their events go
// with them. It returns the number of runs deleted.
func (db *DB) PurgeOldRuns(olderThan time.Duration) (int64, error) {
	res, err := db.Exec(`DELETE FROM runs WHERE started_at < ?`, formatTime(time.Now().Add(-olderThan)))
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	return n, nil
}
