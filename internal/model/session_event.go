package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionEventType string

const (
	EventSessionRequested   SessionEventType = "session.requested"
	EventSessionStatus      SessionEventType = "session.status_changed"
	EventSessionCancelled   SessionEventType = "session.cancelled"
	EventSessionRescheduled SessionEventType = "session.rescheduled"
	EventSessionNotes       SessionEventType = "session.notes_added"
)

// SessionEvent уведомление об изменении занятия
type SessionEvent struct {
	ID         uuid.UUID        `json:"id"`
	Type       SessionEventType `json:"type"`
	ActorID    int64            `json:"actor_id"` // 0 = система
	Session    TutoringSession  `json:"session"`
	PrevStatus SessionStatus    `json:"prev_status,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewSessionEvent создаёт событие со снимком занятия
func NewSessionEvent(t SessionEventType, actorID int64, s *TutoringSession, prev SessionStatus, at time.Time) SessionEvent {
	return SessionEvent{
		ID:         uuid.New(),
		Type:       t,
		ActorID:    actorID,
		Session:    *s.Clone(),
		PrevStatus: prev,
		OccurredAt: at,
	}
}

// Recipients возвращает участников, которых нужно уведомить (кроме инициатора)
func (e SessionEvent) Recipients() []int64 {
	var ids []int64
	for _, id := range []int64{e.Session.StudentID, e.Session.TutorID} {
		if id != e.ActorID {
			ids = append(ids, id)
		}
	}
	return ids
}
