package orchestrator

import (
	"time"

	"github.com/google/uuid"
)

// RequiredConfig contains the minimal required configuration for an Orchestrator.
// All fields are required and have no defaults.
type RequiredConfig struct {
	// Plan is the phased flow every run follows.
	Plan Plan
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*orchestratorOptions)

// orchestratorOptions holds all optional configuration.
type orchestratorOptions struct {
	sink           EventSink
	maxConcurrency int
	now            func() time.Time
	newRunID       func() string
}

func defaultOptions() *orchestratorOptions {
	return &orchestratorOptions{
		sink:     NopSink{},
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// WithSink sets where events are delivered. Use MultiSink to deliver to several.
func WithSink(s EventSink) Option {
	return func(o *orchestratorOptions) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithMaxConcurrency caps the number of tasks of one phase running at once.
// Zero, the default, runs every task of a phase together.
func WithMaxConcurrency(n int) Option {
	return func(o *orchestratorOptions) { o.maxConcurrency = n }
}

// WithClock sets the time source used for event timestamps (mainly for testing).
func WithClock(now func() time.Time) Option {
	return func(o *orchestratorOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRunIDGenerator sets how run IDs are minted when a request carries none.
func WithRunIDGenerator(gen func() string) Option {
	return func(o *orchestratorOptions) {
		if gen != nil {
			o.newRunID = gen
		}
	}
}
