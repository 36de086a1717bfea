package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/futuresdesk/internal/api"
	"github.com/ShayCichocki/futuresdesk/internal/orchestrator"
	"github.com/ShayCichocki/futuresdesk/internal/report"
	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// Saver persists a role's output. It reports failure in its return value.
type Saver interface {
	SaveFor(kind report.Kind, symbol, label, content string) string
}

// Analyst runs one role: build the query, generate, persist.
type Analyst struct {
	spec     RoleSpec
	gen      api.Generator
	saver    Saver
	language string
	logger   *zap.Logger
}

// AnalystConfig configures the analysts of a plan.
type AnalystConfig struct {
	Generator api.Generator
	// Saver is optional; without it reports are not persisted.
	Saver Saver
	// Language is the report language, e.g. "zh-CN".
	Language string
	Logger   *zap.Logger
}

// NewAnalyst creates the analyst for role.
func NewAnalyst(role Role, cfg AnalystConfig) (*Analyst, error) {
	spec, err := Spec(role)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyst{
		spec:     spec,
		gen:      cfg.Generator,
		saver:    cfg.Saver,
		language: cfg.Language,
		logger:   logger.Named("agent").With(zap.String("role", string(role))),
	}, nil
}

// Spec returns the analyst's role wiring.
func (a *Analyst) Spec() RoleSpec { return a.spec }

// Query builds the role's prompt from the snapshot.
func (a *Analyst) Query(s *models.SharedState) string {
	switch a.spec.Role {
	case RoleNews:
		return NewsQuery(s)
	case RoleSentiment:
		return SentimentQuery(s)
	case RoleFundamental:
		return FundamentalQuery(s)
	case RoleBullish:
		return BullishQuery(s)
	case RoleBearish:
		return BearishQuery(s)
	default:
		return BuildSummaryInput(s)
	}
}

// analyze generates the role's report and persists it, returning the text and
// the persistence outcome.
func (a *Analyst) analyze(ctx context.Context, s *models.SharedState) (string, string, error) {
	query := a.Query(s)
	a.logger.Debug("generating", zap.String("symbol", s.Symbol), zap.Int("query_chars", len(query)))

	start := time.Now()
	text, err := a.gen.Generate(ctx, api.GenerateRequest{
		Role:   string(a.spec.Role),
		System: a.spec.System + languageDirective(a.language),
		Prompt: query,
		Tools:  a.spec.Tools,
	})
	if err != nil {
		return "", "", err
	}
	a.logger.Info("generated",
		zap.Int("output_chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	var saved string
	if a.saver != nil {
		saved = a.saver.SaveFor(a.spec.Kind, s.Symbol, keyword(s), text)
		a.logger.Debug("report saved", zap.String("result", saved))
	}
	return text, saved, nil
}

// Operation adapts the analyst to a phase task.
func (a *Analyst) Operation() orchestrator.Operation {
	return func(ctx context.Context, s *models.SharedState) (string, error) {
		text, _, err := a.analyze(ctx, s)
		return text, err
	}
}

// AggregateOperation adapts the analyst to the aggregation task. The saved
// path, or the save failure text, becomes the report path.
func (a *Analyst) AggregateOperation() orchestrator.AggregateOperation {
	return func(ctx context.Context, s *models.SharedState) (orchestrator.AggregateResult, error) {
		text, saved, err := a.analyze(ctx, s)
		if err != nil {
			return orchestrator.AggregateResult{}, err
		}
		return orchestrator.AggregateResult{Report: text, Path: saved}, nil
	}
}
