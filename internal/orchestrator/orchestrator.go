package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// StateKind is the kind of a state machine state.
type StateKind int

const (
	StateStart StateKind = iota
	StatePhaseDispatch
	StatePhaseRunning
	StatePhaseJoin
	StateAggregate
	StateAggregateRunning
	StateEnd
)

// State is one state of a run. Phase is the 1-based phase number for the
// phase kinds and zero otherwise.
type State struct {
	Kind  StateKind
	Phase int
}

// String renders the state as START, PHASE1_DISPATCH, PHASE2_JOIN, END and so on.
func (s State) String() string {
	switch s.Kind {
	case StateStart:
		return "START"
	case StatePhaseDispatch:
		return fmt.Sprintf("PHASE%d_DISPATCH", s.Phase)
	case StatePhaseRunning:
		return fmt.Sprintf("PHASE%d_RUNNING", s.Phase)
	case StatePhaseJoin:
		return fmt.Sprintf("PHASE%d_JOIN", s.Phase)
	case StateAggregate:
		return "AGGREGATE"
	case StateAggregateRunning:
		return "AGGREGATE_RUNNING"
	case StateEnd:
		return "END"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s.Kind))
	}
}

// Request is one analysis request.
type Request struct {
	Symbol  string
	Keyword string
	// RunID is used as-is when set; otherwise a new one is generated.
	RunID string
}

// Result is what a run hands back at END.
type Result struct {
	RunID string
	// State is the run's SharedState. The orchestrator no longer references it.
	State *models.SharedState
	// Trace lists every state visited, START through END.
	Trace []State
	// Aggregated reports whether the run reached END through aggregation
	// rather than through a fail-open early exit.
	Aggregated bool
	Duration   time.Duration
}

// Orchestrator drives the phased flow of a Plan. It holds no per-run state
// and is safe to use for concurrent, independent runs.
type Orchestrator struct {
	plan       Plan
	sink       EventSink
	dispatcher *Dispatcher
	now        func() time.Time
	newRunID   func() string
}

// New creates an Orchestrator with the required configuration and optional settings.
// The plan is validated here; an invalid plan is reported as a *Fault.
func New(req RequiredConfig, opts ...Option) (*Orchestrator, error) {
	if err := req.Plan.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	d := NewDispatcher(o.maxConcurrency, o.sink)
	d.now = o.now

	return &Orchestrator{
		plan:       req.Plan,
		sink:       o.sink,
		dispatcher: d,
		now:        o.now,
		newRunID:   o.newRunID,
	}, nil
}

// Plan returns the orchestrator's plan.
func (o *Orchestrator) Plan() Plan {
	return o.plan
}

// run carries the mutable state of a single execution.
type run struct {
	o        *Orchestrator
	id       string
	state    *models.SharedState
	snapshot *models.SharedState
	started  time.Time
	trace    []State
	agg      bool
}

// Run executes one request from START to END and returns the final state.
//
// Task and aggregation failures are recorded in the returned state and never
// surface as an error. The only error Run returns is a *Fault, raised for a
// failure outside every task boundary.
func (o *Orchestrator) Run(ctx context.Context, req Request) (res *Result, err error) {
	if strings.TrimSpace(req.Symbol) == "" {
		return nil, &Fault{Op: "start", Err: errors.New("symbol is required")}
	}

	r := &run{
		o:       o,
		id:      req.RunID,
		state:   models.NewSharedState(req.Symbol, req.Keyword),
		started: o.now(),
	}
	if r.id == "" {
		r.id = o.newRunID()
	}

	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = &Fault{Op: "run", Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	cur := State{Kind: StateStart}
	r.trace = append(r.trace, cur)
	o.emit(Event{Type: EventRunStarted, RunID: r.id, State: cur.String(), Message: req.Symbol})

	for cur.Kind != StateEnd {
		next, err := r.step(ctx, cur)
		if err != nil {
			return nil, err
		}
		o.emit(Event{
			Type:    EventStateChanged,
			RunID:   r.id,
			State:   next.String(),
			Message: cur.String(),
		})
		r.trace = append(r.trace, next)
		cur = next
	}

	elapsed := o.now().Sub(r.started)
	summary := r.state.Summary()
	o.emit(Event{
		Type:     EventRunFinished,
		RunID:    r.id,
		State:    cur.String(),
		Duration: elapsed,
		Summary:  &summary,
	})

	return &Result{
		RunID:      r.id,
		State:      r.state,
		Trace:      r.trace,
		Aggregated: r.agg,
		Duration:   elapsed,
	}, nil
}

// step performs the work of state cur and returns the state that follows it.
func (r *run) step(ctx context.Context, cur State) (State, error) {
	plan := r.o.plan

	switch cur.Kind {
	case StateStart:
		return State{Kind: StatePhaseDispatch, Phase: 1}, nil

	case StatePhaseDispatch:
		phase := plan.Phases[cur.Phase-1]
		// Every task of the phase sees the committed results of earlier phases
		// and nothing from its siblings.
		r.snapshot = r.state.Clone()
		r.o.emit(Event{
			Type:  EventPhaseDispatched,
			RunID: r.id,
			State: cur.String(),
			Phase: phase.Name,
			Tasks: phase.TaskNames(),
		})
		return State{Kind: StatePhaseRunning, Phase: cur.Phase}, nil

	case StatePhaseRunning:
		phase := plan.Phases[cur.Phase-1]
		completions := r.o.dispatcher.Dispatch(ctx, r.id, phase, r.snapshot)
		r.snapshot = nil

		updates := make([]models.Update, 0, len(completions))
		for _, c := range completions {
			updates = append(updates, c.Update)
		}
		if err := r.state.Apply(models.Merge(updates...)); err != nil {
			return cur, &Fault{Op: "commit " + phase.Name, Err: err}
		}
		return State{Kind: StatePhaseJoin, Phase: cur.Phase}, nil

	case StatePhaseJoin:
		phase := plan.Phases[cur.Phase-1]
		barrier, err := Evaluate(phase, r.state)
		if err != nil {
			return cur, &Fault{Op: "join " + phase.Name, Err: err}
		}
		ev := Event{
			Type:     EventBarrierEvaluated,
			RunID:    r.id,
			State:    cur.String(),
			Phase:    phase.Name,
			Ready:    barrier.Ready,
			Filled:   barrier.Filled,
			Expected: barrier.Expected,
		}
		if len(barrier.Missing) > 0 {
			ev.Message = "missing " + joinSlots(barrier.Missing)
		}
		r.o.emit(ev)

		decision := Route(barrier, cur.Phase < len(plan.Phases))
		r.o.emit(Event{
			Type:     EventRouted,
			RunID:    r.id,
			State:    cur.String(),
			Phase:    phase.Name,
			Decision: decision,
		})

		switch decision {
		case DecisionNextPhase:
			return State{Kind: StatePhaseDispatch, Phase: cur.Phase + 1}, nil
		case DecisionAggregate:
			return State{Kind: StateAggregate}, nil
		default:
			return State{Kind: StateEnd}, nil
		}

	case StateAggregate:
		r.o.emit(Event{
			Type:  EventAggregateStarted,
			RunID: r.id,
			State: cur.String(),
			Task:  plan.Aggregate.Name,
		})
		return State{Kind: StateAggregateRunning}, nil

	case StateAggregateRunning:
		start := r.o.now()
		update, aggErr := plan.Aggregate.Invoke(ctx, r.state.Clone())
		if err := r.state.Apply(update); err != nil {
			return cur, &Fault{Op: "commit aggregation", Err: err}
		}
		r.agg = true

		ev := Event{
			Type:     EventAggregateCompleted,
			RunID:    r.id,
			State:    cur.String(),
			Task:     plan.Aggregate.Name,
			Duration: r.o.now().Sub(start),
			Message:  r.state.ReportPath,
		}
		if aggErr != nil {
			ev.Error = aggErr.Error()
		}
		r.o.emit(ev)
		return State{Kind: StateEnd}, nil

	default:
		return cur, &Fault{Op: "step", Err: fmt.Errorf("no transition from state %s", cur)}
	}
}

func (o *Orchestrator) emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = o.now()
	}
	o.sink.Emit(ev)
}

func joinSlots(slots []models.Slot) string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
