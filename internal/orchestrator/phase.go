package orchestrator

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// Phase is a set of tasks that must all complete before the flow advances.
type Phase struct {
	// Name identifies the phase in events (e.g. "first_phase").
	Name string
	// Tasks run concurrently; each owns a distinct slot.
	Tasks []Task
	// Flag is the readiness flag the phase's barrier recomputes.
	Flag models.ReadinessFlag
}

// Slots returns the slots written by the phase's tasks, in task order.
func (p Phase) Slots() []models.Slot {
	slots := make([]models.Slot, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		slots = append(slots, t.Slot)
	}
	return slots
}

// TaskNames returns the names of the phase's tasks, in task order.
func (p Phase) TaskNames() []string {
	names := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		names = append(names, t.Name)
	}
	return names
}

// Plan is the directed flow a run follows: phases in order, then aggregation.
type Plan struct {
	Phases    []Phase
	Aggregate Aggregate
}

// Fault is an OrchestratorFault: a failure outside any task boundary.
// It is the only failure a run returns as an error.
type Fault struct {
	Op  string
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("orchestrator fault in %s: %v", f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// IsFault reports whether err is, or wraps, a Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// Validate checks the plan's structure. Within every phase the slots written by
// its tasks must be pairwise disjoint, so concurrent tasks never contend for a
// field. Readiness flags must be distinct across phases.
func (p Plan) Validate() error {
	if len(p.Phases) == 0 {
		return &Fault{Op: "validate plan", Err: errors.New("plan has no phases")}
	}

	flags := make(map[models.ReadinessFlag]string)
	for i, ph := range p.Phases {
		name := ph.Name
		if name == "" {
			name = fmt.Sprintf("phase %d", i+1)
		}
		if len(ph.Tasks) == 0 {
			return &Fault{Op: "validate plan", Err: fmt.Errorf("%s has no tasks", name)}
		}
		if prev, ok := flags[ph.Flag]; ok {
			return &Fault{Op: "validate plan", Err: fmt.Errorf("%s reuses readiness flag %q of %s", name, ph.Flag, prev)}
		}
		flags[ph.Flag] = name
		if err := models.NewSharedState("", "").SetReady(ph.Flag, false); err != nil {
			return &Fault{Op: "validate plan", Err: fmt.Errorf("%s: %w", name, err)}
		}

		owners := make(map[models.Slot]string)
		for _, t := range ph.Tasks {
			if t.Name == "" {
				return &Fault{Op: "validate plan", Err: fmt.Errorf("%s has an unnamed task", name)}
			}
			if t.Run == nil {
				return &Fault{Op: "validate plan", Err: fmt.Errorf("task %s has no operation", t.Name)}
			}
			if !t.Slot.Valid() {
				return &Fault{Op: "validate plan", Err: fmt.Errorf("task %s writes unknown slot %q", t.Name, t.Slot)}
			}
			if other, ok := owners[t.Slot]; ok {
				return &Fault{Op: "validate plan", Err: fmt.Errorf("tasks %s and %s in %s both write %s", other, t.Name, name, t.Slot)}
			}
			owners[t.Slot] = t.Name
		}
	}

	if p.Aggregate.Run == nil {
		return &Fault{Op: "validate plan", Err: errors.New("plan has no aggregation operation")}
	}
	return nil
}

// NewPlan assembles and validates a plan.
func NewPlan(aggregate Aggregate, phases ...Phase) (Plan, error) {
	p := Plan{Phases: phases, Aggregate: aggregate}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}
