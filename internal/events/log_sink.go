package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes lifecycle events to a zerolog logger.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(ctx context.Context, evt LifecycleEvent) {
	var e *zerolog.Event
	switch evt.Status {
	case StatusError:
		e = s.log.Error()
	case StatusSuccess:
		e = s.log.Info()
	default:
		e = s.log.Debug()
	}

	runID := evt.RunID
	if runID == "" {
		runID = RunFromContext(ctx)
	}
	if runID != "" {
		e = e.Str("run", runID)
	}
	e.Str("step", evt.Step).
		Str("status", string(evt.Status)).
		Fields(evt.Meta).
		Msg("lifecycle")
}
