package orchestrator

import (
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// BarrierResult is the outcome of joining a phase.
type BarrierResult struct {
	Phase    string
	Flag     models.ReadinessFlag
	Expected int
	Filled   int
	// Missing lists the expected slots that have no entry.
	Missing []models.Slot
	Ready   bool
}

// Evaluate joins a phase. It is only called after every task of the phase has
// returned, so in normal operation every expected slot holds at least one entry
// and the check always passes. The check is kept as an assertion: if a slot is
// empty the flag is cleared and the router ends the run.
//
// Evaluate recomputes the phase's readiness flag on state.
func Evaluate(phase Phase, state *models.SharedState) (BarrierResult, error) {
	res := BarrierResult{
		Phase:    phase.Name,
		Flag:     phase.Flag,
		Expected: len(phase.Tasks),
	}
	for _, slot := range phase.Slots() {
		if state.Filled(slot) {
			res.Filled++
		} else {
			res.Missing = append(res.Missing, slot)
		}
	}
	res.Ready = res.Filled == res.Expected

	if err := state.SetReady(phase.Flag, res.Ready); err != nil {
		return res, err
	}
	return res, nil
}
