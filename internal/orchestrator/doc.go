// Package orchestrator runs phased analysis plans.
//
// A Plan is an ordered list of Phases followed by one Aggregate step. For each
// request the Orchestrator:
//   - Dispatches every Task of the current Phase concurrently, each against the same
//     read-only snapshot of the SharedState
//   - Commits the tasks' partial updates once all of them have returned
//   - Evaluates the Phase's Barrier, recomputing its readiness flag
//   - Routes to the next Phase, to the Aggregate step, or straight to END
//
// Task failures never abort a run. They are recorded as Failure entries in the
// task's own slot plus a message in SharedState.Errors. Only an OrchestratorFault
// (an invalid plan or a defect outside any task boundary) is returned as an error.
//
// The package does not log. Progress is reported as Events to an injected EventSink.
//
// Example usage:
//
//	orch := orchestrator.New(orchestrator.RequiredConfig{Plan: plan},
//		orchestrator.WithSink(orchestrator.NewLogSink(logger)),
//		orchestrator.WithMaxConcurrency(3),
//	)
//	res, err := orch.Run(ctx, orchestrator.Request{Symbol: "ss", Keyword: "不锈钢"})
package orchestrator
