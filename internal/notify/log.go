package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// LogSink пишет события в лог
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Send(_ context.Context, event model.SessionEvent) error {
	s.logger.Info("Session event",
		zap.String("event_id", event.ID.String()),
		zap.String("type", string(event.Type)),
		zap.Int64("session_id", event.Session.ID),
		zap.Int64("actor_id", event.ActorID),
		zap.String("status", string(event.Session.Status)),
		zap.String("prev_status", string(event.PrevStatus)),
	)
	return nil
}
