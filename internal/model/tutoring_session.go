package model

import "time"

type SessionStatus string

const (
	SessionStatusRequested  SessionStatus = "REQUESTED"   // Ожидает подтверждения учителя
	SessionStatusScheduled  SessionStatus = "SCHEDULED"   // Подтверждено
	SessionStatusInProgress SessionStatus = "IN_PROGRESS" // Идёт занятие
	SessionStatusCompleted  SessionStatus = "COMPLETED"   // Завершено
	SessionStatusCancelled  SessionStatus = "CANCELLED"   // Отменено
	SessionStatusNoShow     SessionStatus = "NO_SHOW"     // Студент не пришёл
)

// AllSessionStatuses перечисляет все статусы в порядке жизненного цикла
var AllSessionStatuses = []SessionStatus{
	SessionStatusRequested,
	SessionStatusScheduled,
	SessionStatusInProgress,
	SessionStatusCompleted,
	SessionStatusCancelled,
	SessionStatusNoShow,
}

// Valid проверяет, что статус входит в закрытый набор
func (s SessionStatus) Valid() bool {
	for _, st := range AllSessionStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal проверяет, является ли статус конечным
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusCancelled, SessionStatusNoShow:
		return true
	}
	return false
}

// ActiveSessionStatuses статусы, из которых ещё возможны переходы
var ActiveSessionStatuses = []SessionStatus{
	SessionStatusRequested,
	SessionStatusScheduled,
	SessionStatusInProgress,
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid проверяет приоритет
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type TutoringSession struct {
	ID                 int64         `json:"id"`
	StudentID          int64         `json:"student_id"`
	TutorID            int64         `json:"tutor_id"`
	CourseID           int64         `json:"course_id"`
	ScheduledAt        time.Time     `json:"scheduled_at"`
	DurationMinutes    int           `json:"duration_minutes"`
	Status             SessionStatus `json:"status"`
	Priority           Priority      `json:"priority"`
	StudentQuestion    string        `json:"student_question"`
	TutorNotes         string        `json:"tutor_notes"`
	SessionSummary     string        `json:"session_summary"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	CancelledBy        *int64        `json:"cancelled_by,omitempty"`
	Version            int           `json:"version"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// EndsAt возвращает время окончания занятия
func (s *TutoringSession) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// IsParticipant проверяет, участвует ли пользователь в занятии
func (s *TutoringSession) IsParticipant(userID int64) bool {
	return userID == s.StudentID || userID == s.TutorID
}

// Clone возвращает копию, которую можно менять не затрагивая оригинал
func (s *TutoringSession) Clone() *TutoringSession {
	c := *s
	if s.CancelledBy != nil {
		by := *s.CancelledBy
		c.CancelledBy = &by
	}
	return &c
}
