package orchestrator

// EventSink receives orchestrator events. Implementations must be safe for
// concurrent use: tasks of one phase emit from separate goroutines.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to an EventSink.
type SinkFunc func(Event)

// Emit calls f(event).
func (f SinkFunc) Emit(event Event) { f(event) }

// NopSink discards all events.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(Event) {}

// MultiSink fans each event out to several sinks in order.
type MultiSink []EventSink

// Emit forwards the event to every non-nil sink.
func (m MultiSink) Emit(event Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(event)
		}
	}
}
