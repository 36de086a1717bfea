package orchestrator

import (
	"time"

	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventRunStarted indicates a run has entered START.
	EventRunStarted EventType = "run_started"
	// EventStateChanged indicates the state machine moved to a new state.
	EventStateChanged EventType = "state_changed"
	// EventPhaseDispatched indicates a phase's tasks have been issued.
	EventPhaseDispatched EventType = "phase_dispatched"
	// EventTaskStarted indicates a task invocation began.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task recorded a success entry.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task recorded a failure entry.
	EventTaskFailed EventType = "task_failed"
	// EventBarrierEvaluated indicates a phase barrier recomputed its readiness flag.
	EventBarrierEvaluated EventType = "barrier_evaluated"
	// EventRouted indicates a router decision at a barrier.
	EventRouted EventType = "routed"
	// EventAggregateStarted indicates the aggregation task began.
	EventAggregateStarted EventType = "aggregate_started"
	// EventAggregateCompleted indicates the aggregation task finished, successfully or not.
	EventAggregateCompleted EventType = "aggregate_completed"
	// EventRunFinished indicates the run reached END.
	EventRunFinished EventType = "run_finished"
)

// Event represents an event emitted by the orchestrator.
// These events feed logging, the TUI and the run history.
type Event struct {
	// Type is the kind of event.
	Type EventType `json:"type"`
	// RunID identifies the run the event belongs to.
	RunID string `json:"run_id"`
	// State is the state machine state at emission time.
	State string `json:"state,omitempty"`
	// Phase is the phase name, if applicable.
	Phase string `json:"phase,omitempty"`
	// Task is the task name, if applicable.
	Task string `json:"task,omitempty"`
	// Slot is the result slot the task writes, if applicable.
	Slot models.Slot `json:"slot,omitempty"`
	// Tasks lists the task names issued by a dispatch.
	Tasks []string `json:"tasks,omitempty"`
	// Message provides additional context about the event.
	Message string `json:"message,omitempty"`
	// Error contains the failure message for failure events.
	Error string `json:"error,omitempty"`
	// Ready is the barrier's readiness result.
	Ready bool `json:"ready"`
	// Filled and Expected count non-empty slots at a barrier.
	Filled   int `json:"filled"`
	Expected int `json:"expected,omitempty"`
	// Decision is the router decision.
	Decision Decision `json:"decision,omitempty"`
	// Duration is the elapsed time of a task or the whole run.
	Duration time.Duration `json:"duration,omitempty"`
	// Summary carries end-of-run statistics on EventRunFinished.
	Summary *models.RunSummary `json:"summary,omitempty"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
}
