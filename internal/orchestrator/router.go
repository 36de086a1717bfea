package orchestrator

// Decision is a router's choice of the next step after a barrier.
type Decision string

const (
	// DecisionNextPhase dispatches the following phase.
	DecisionNextPhase Decision = "next_phase"
	// DecisionAggregate runs the aggregation task.
	DecisionAggregate Decision = "aggregate"
	// DecisionEnd terminates the run with whatever state has accumulated.
	DecisionEnd Decision = "end"
)

// Route picks the next step for a barrier outcome. A barrier that is not ready
// always ends the run; the orchestrator never waits on a phase that cannot
// complete.
func Route(barrier BarrierResult, hasNextPhase bool) Decision {
	switch {
	case !barrier.Ready:
		return DecisionEnd
	case hasNextPhase:
		return DecisionNextPhase
	default:
		return DecisionAggregate
	}
}
