package orchestrator

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogSink writes events as structured log entries.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink logging to the given logger.
// A nil logger yields a no-op sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("orchestrator")}
}

// Emit logs the event at a level matching its type.
func (l *LogSink) Emit(event Event) {
	fields := []zap.Field{zap.String("run_id", event.RunID)}
	if event.State != "" {
		fields = append(fields, zap.String("state", event.State))
	}
	if event.Phase != "" {
		fields = append(fields, zap.String("phase", event.Phase))
	}
	if event.Task != "" {
		fields = append(fields, zap.String("task", event.Task))
	}
	if event.Slot != "" {
		fields = append(fields, zap.String("slot", string(event.Slot)))
	}
	if len(event.Tasks) > 0 {
		fields = append(fields, zap.Strings("tasks", event.Tasks))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	if event.Duration > 0 {
		fields = append(fields, zap.Duration("duration", event.Duration))
	}

	level := zapcore.InfoLevel
	msg := string(event.Type)

	switch event.Type {
	case EventStateChanged, EventTaskStarted:
		level = zapcore.DebugLevel
	case EventTaskFailed:
		level = zapcore.WarnLevel
	case EventBarrierEvaluated:
		fields = append(fields,
			zap.Bool("ready", event.Ready),
			zap.Int("filled", event.Filled),
			zap.Int("expected", event.Expected),
		)
		if !event.Ready {
			level = zapcore.WarnLevel
		}
	case EventRouted:
		fields = append(fields, zap.String("decision", string(event.Decision)))
	case EventRunFinished:
		if s := event.Summary; s != nil {
			fields = append(fields,
				zap.Int("succeeded", s.Succeeded),
				zap.Int("total", s.Total),
				zap.Int("report_bytes", s.ReportBytes),
				zap.Int("errors", len(s.Errors)),
			)
		}
	}
	if event.Message != "" {
		fields = append(fields, zap.String("message", event.Message))
	}

	if ce := l.logger.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}
