package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ShayCichocki/futuresdesk/pkg/models"
)

// Operation is the black-box work behind a task: an LLM-driven analyst, a data
// fetch, and so on. It reads the snapshot and returns text or an error.
type Operation func(ctx context.Context, state *models.SharedState) (string, error)

// Task is a named unit of work that owns exactly one result slot.
type Task struct {
	// Name identifies the task in events (e.g. "news_agent").
	Name string
	// Slot is the result slot this task appends to.
	Slot models.Slot
	// Label is the human-readable name used in error messages (e.g. "news analysis").
	Label string
	// Run is the underlying operation.
	Run Operation
	// Timeout bounds a single invocation. Zero means no limit.
	Timeout time.Duration
}

// label returns the task's error label, falling back to its name.
func (t Task) label() string {
	if t.Label != "" {
		return t.Label
	}
	return t.Name
}

// Invoke runs the operation against a read-only snapshot and normalizes the
// outcome into one ResultEntry plus the partial update that records it.
//
// Failures of the operation (returned errors, panics, timeouts, cancellation)
// become a Failure entry in the task's slot and a message in Errors. Invoke never
// returns early while the operation may still count as running, unless the
// context is done.
func (t Task) Invoke(ctx context.Context, snapshot *models.SharedState) (models.ResultEntry, models.Update) {
	content, err := invoke(ctx, t.Timeout, func(ctx context.Context) (string, error) {
		return t.Run(ctx, snapshot)
	})

	if err != nil {
		entry := models.Failure(err.Error())
		u := models.Update{}.
			Append(t.Slot, entry).
			WithError(fmt.Sprintf("%s failed: %v", t.label(), err))
		return entry, u
	}

	entry := models.Success(content)
	return entry, models.Update{}.Append(t.Slot, entry)
}

// AggregateResult is the output of the aggregation operation.
type AggregateResult struct {
	// Report is the final report text.
	Report string
	// Path is where the report was persisted, or the persistence error text.
	Path string
}

// AggregateOperation combines every prior result into the final report.
type AggregateOperation func(ctx context.Context, state *models.SharedState) (AggregateResult, error)

// Aggregate is the terminal task that writes FinalReport.
type Aggregate struct {
	Name    string
	Label   string
	Run     AggregateOperation
	Timeout time.Duration
}

// ErrEmptyReport is returned when the aggregation operation produces no text.
var ErrEmptyReport = errors.New("aggregation returned an empty report")

// Invoke runs the aggregation and returns the update for it. The update always
// sets FinalReport: on failure it carries a synthetic failure string and the
// failure is also recorded in Errors.
func (a Aggregate) Invoke(ctx context.Context, snapshot *models.SharedState) (models.Update, error) {
	var out AggregateResult
	_, err := invoke(ctx, a.Timeout, func(ctx context.Context) (string, error) {
		res, err := a.Run(ctx, snapshot)
		if err != nil {
			return "", err
		}
		if res.Report == "" {
			return "", ErrEmptyReport
		}
		out = res
		return res.Report, nil
	})

	label := a.Label
	if label == "" {
		label = a.Name
	}

	if err != nil {
		u := models.Update{}.
			WithFinalReport(fmt.Sprintf("final report generation failed: %v", err)).
			WithError(fmt.Sprintf("%s failed: %v", label, err))
		return u, err
	}

	u := models.Update{}.WithFinalReport(out.Report)
	if out.Path != "" {
		u = u.WithReportPath(out.Path)
	}
	return u, nil
}

// invoke runs fn in its own goroutine so that a timeout or cancellation can be
// observed even when fn ignores its context. A panic in fn is converted to an
// error.
func invoke(ctx context.Context, timeout time.Duration, fn func(context.Context) (string, error)) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		content string
		err     error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		content, err := fn(ctx)
		done <- result{content: content, err: err}
	}()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		// Prefer a result that raced with cancellation.
		select {
		case r = <-done:
		default:
			r.err = ctx.Err()
		}
	}

	if r.err != nil && timeout > 0 && errors.Is(r.err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("timed out after %s", timeout)
	}
	return r.content, r.err
}
