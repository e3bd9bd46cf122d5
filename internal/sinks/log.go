package sinks

import "github.com/nerrad567/nvx-fleet/internal/events"

// LogSink writes one structured line per record.
type LogSink struct {
	logger Logger
}

func NewLogSink(logger Logger) *LogSink {
	return &LogSink{logger: orNoop(logger)}
}

func (s *LogSink) Handle(rec events.Record) {
	args := []any{
		"endpoint", rec.SourceID,
		"kind", rec.Kind,
		"event", rec.Name,
	}
	if rec.Kind == events.KindStreamChange {
		args = append(args, "input", rec.Input)
	}
	args = append(args, "payload", rec.Payload)
	s.logger.Info("endpoint event", args...)
}
