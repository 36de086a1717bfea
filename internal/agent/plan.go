package agent

import (
	"time"

	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// Phase names used in events.
const (
	FirstPhase  = "first_phase"
	SecondPhase = "second_phase"
)

// PlanConfig configures FuturesPlan.
type PlanConfig struct {
	AnalystConfig
	// TaskTimeout bounds each phase task. Zero means no limit.
	TaskTimeout time.Duration
	// AggregateTimeout bounds the summary. Zero means no limit.
	AggregateTimeout time.Duration
}

// FuturesPlan builds the two-phase analysis: news, sentiment and fundamental
// in parallel, then bullish and bearish in parallel, then the summary.
func FuturesPlan(cfg PlanConfig) (orchestrator.Plan, error) {
	task := func(role Role) (orchestrator.Task, error) {
		a, err := NewAnalyst(role, cfg.AnalystConfig)
		if err != nil {
			return orchestrator.Task{}, err
		}
		return orchestrator.Task{
			Name:    a.spec.Task,
			Slot:    a.spec.Slot,
			Label:   a.spec.Label,
			Run:     a.Operation(),
			Timeout: cfg.TaskTimeout,
		}, nil
	}

	phase := func(name string, flag models.ReadinessFlag, roles ...Role) (orchestrator.Phase, error) {
		p := orchestrator.Phase{Name: name, Flag: flag}
		for _, r := range roles {
			t, err := task(r)
			if err != nil {
				return orchestrator.Phase{}, err
			}
			p.Tasks = append(p.Tasks, t)
		}
		return p, nil
	}

	first, err := phase(FirstPhase, models.FlagFirstPhaseReady, RoleNews, RoleSentiment, RoleFundamental)
	if err != nil {
		return orchestrator.Plan{}, err
	}
	second, err := phase(SecondPhase, models.FlagSecondPhaseReady, RoleBullish, RoleBearish)
	if err != nil {
		return orchestrator.Plan{}, err
	}

	summary, err := NewAnalyst(RoleSummary, cfg.AnalystConfig)
	if err != nil {
		return orchestrator.Plan{}, err
	}
	agg := orchestrator.Aggregate{
		Name:    summary.spec.Task,
		Label:   summary.spec.Label,
		Run:     summary.AggregateOperation(),
		Timeout: cfg.AggregateTimeout,
	}

	return orchestrator.NewPlan(agg, first, second)
}
