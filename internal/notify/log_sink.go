package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes notifications to a structured logger; used by the headless worker.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, n Notification) {
	ev := s.log.Info().
		Str("kind", string(n.Kind)).
		Str("subject_id", n.SubjectID).
		Str("title", n.Title).
		Int64("duration_ms", n.DurationMs)
	if n.Action != nil {
		ev = ev.Str("action", n.Action.Label)
	}
	ev.Msg(n.Body)
}
