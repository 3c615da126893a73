package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/scheduling"
)

// ExpiredRequestReason причина отмены просроченных запросов
const ExpiredRequestReason = "request expired"

// SessionChanges изменяемые учителем параметры занятия; nil = без изменений
type SessionChanges struct {
	ScheduledAt     *time.Time
	DurationMinutes *int
	CourseID        *int64
	Priority        *model.Priority
	TutorNotes      *string
}

func (c SessionChanges) empty() bool {
	return c.ScheduledAt == nil && c.DurationMinutes == nil && c.CourseID == nil &&
		c.Priority == nil && c.TutorNotes == nil
}

// SessionLifecycleManager ведёт занятие по статусам и проверяет права участников
type SessionLifecycleManager struct {
	sessions    SessionStore
	courses     CourseCatalog
	tx          Transactor
	reservation *reservation
	guard       *scheduling.ConflictGuard
	notifier    Notifier
	clock       scheduling.Clock
	logger      *zap.Logger
}

func NewSessionLifecycleManager(
	sessions SessionStore,
	slots TimeSlotStore,
	courses CourseCatalog,
	tx Transactor,
	expander *scheduling.Expander,
	guard *scheduling.ConflictGuard,
	notifier Notifier,
	clock scheduling.Clock,
	logger *zap.Logger,
) *SessionLifecycleManager {
	return &SessionLifecycleManager{
		sessions: sessions,
		courses:  courses,
		tx:       tx,
		reservation: &reservation{
			slots:    slots,
			sessions: sessions,
			expander: expander,
			guard:    guard,
		},
		guard:    guard,
		notifier: orNop(notifier),
		clock:    clock,
		logger:   logger,
	}
}

// GetSession возвращает занятие участнику
func (m *SessionLifecycleManager) GetSession(ctx context.Context, sessionID, userID int64) (*model.TutoringSession, error) {
	s, err := loadSession(ctx, m.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(s, userActor(userID)); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSessions возвращает занятия пользователя; пустой statuses = все
func (m *SessionLifecycleManager) ListSessions(ctx context.Context, userID int64, statuses []model.SessionStatus) ([]*model.TutoringSession, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, model.ValidationErrorf("unknown status %q", st)
		}
	}

	sessions, err := m.sessions.GetByParticipant(ctx, userID, statuses)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSessionStatus переводит занятие в новый статус по таблице переходов.
// Отмена идёт через CancelSession, так как требует причины.
func (m *SessionLifecycleManager) UpdateSessionStatus(ctx context.Context, sessionID, actorID int64, status model.SessionStatus) (*model.TutoringSession, error) {
	if !status.Valid() {
		return nil, model.ValidationErrorf("unknown status %q", status)
	}

	return m.changeStatus(ctx, sessionID, userActor(actorID), status, func(*model.TutoringSession) error {
		if status == model.SessionStatusCancelled {
			return model.ValidationErrorf("cancellation requires a reason")
		}
		return nil
	})
}

// CompleteSession завершает идущее занятие с итогом
func (m *SessionLifecycleManager) CompleteSession(ctx context.Context, sessionID, tutorID int64, summary string) (*model.TutoringSession, error) {
	summary = strings.TrimSpace(summary)

	return m.changeStatus(ctx, sessionID, userActor(tutorID), model.SessionStatusCompleted, func(s *model.TutoringSession) error {
		s.SessionSummary = summary
		return nil
	})
}

// CancelSession отменяет занятие с указанием причины
func (m *SessionLifecycleManager) CancelSession(ctx context.Context, sessionID, actorID int64, reason string) (*model.TutoringSession, error) {
	return m.cancel(ctx, sessionID, userActor(actorID), reason)
}

func (m *SessionLifecycleManager) cancel(ctx context.Context, sessionID int64, a actor, reason string) (*model.TutoringSession, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, model.ValidationErrorf("cancellation reason is required")
	}

	return m.changeStatus(ctx, sessionID, a, model.SessionStatusCancelled, func(s *model.TutoringSession) error {
		s.CancellationReason = reason
		if !a.system {
			by := a.userID
			s.CancelledBy = &by
		}
		return nil
	})
}

// AddSessionNotes дописывает заметки учителя к незавершённому занятию
func (m *SessionLifecycleManager) AddSessionNotes(ctx context.Context, sessionID, tutorID int64, notes string) (*model.TutoringSession, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, model.ValidationErrorf("notes are empty")
	}

	s, err := m.loadForTutor(ctx, sessionID, tutorID)
	if err != nil {
		return nil, err
	}

	if s.TutorNotes != "" {
		s.TutorNotes += "\n" + notes
	} else {
		s.TutorNotes = notes
	}

	if err := m.sessions.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	m.logger.Info("Session notes added",
		zap.Int64("session_id", s.ID),
		zap.Int64("tutor_id", tutorID),
	)

	m.notifier.Notify(ctx, model.NewSessionEvent(model.EventSessionNotes, tutorID, s, s.Status, m.clock.Now()))

	return s, nil
}

// UpdateTutoringSession меняет параметры занятия. Новое время проверяется
// так же, как при бронировании, без учёта самого занятия.
func (m *SessionLifecycleManager) UpdateTutoringSession(ctx context.Context, sessionID, tutorID int64, changes SessionChanges) (*model.TutoringSession, error) {
	if changes.empty() {
		return nil, model.ValidationErrorf("nothing to update")
	}
	if changes.DurationMinutes != nil && *changes.DurationMinutes <= 0 {
		return nil, model.ValidationErrorf("duration must be positive, got %d", *changes.DurationMinutes)
	}
	if changes.Priority != nil && !changes.Priority.Valid() {
		return nil, model.ValidationErrorf("unknown priority %q", *changes.Priority)
	}

	s, err := m.loadForTutor(ctx, sessionID, tutorID)
	if err != nil {
		return nil, err
	}

	if changes.CourseID != nil && *changes.CourseID != s.CourseID {
		if _, err := requireCourse(ctx, m.courses, *changes.CourseID, s.TutorID); err != nil {
			return nil, err
		}
		s.CourseID = *changes.CourseID
	}
	if changes.Priority != nil {
		s.Priority = *changes.Priority
	}
	if changes.TutorNotes != nil {
		s.TutorNotes = strings.TrimSpace(*changes.TutorNotes)
	}

	prevStart, prevDuration := s.ScheduledAt, s.DurationMinutes
	if changes.ScheduledAt != nil {
		s.ScheduledAt = *changes.ScheduledAt
	}
	if changes.DurationMinutes != nil {
		s.DurationMinutes = *changes.DurationMinutes
	}
	moved := !s.ScheduledAt.Equal(prevStart) || s.DurationMinutes != prevDuration

	if !moved {
		if err := m.sessions.Update(ctx, s); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
		m.logger.Info("Session updated", zap.Int64("session_id", s.ID))
		return s, nil
	}

	if s.Status == model.SessionStatusInProgress {
		return nil, &model.TransitionError{From: s.Status, To: s.Status, Reason: "session already started, time cannot change"}
	}
	if !s.ScheduledAt.Equal(prevStart) && s.ScheduledAt.Before(m.clock.Now()) {
		return nil, model.ValidationErrorf("start time %s is in the past", s.ScheduledAt.Format(timeLayout))
	}

	err = m.tx.WithTutorLock(ctx, s.TutorID, func(ctx context.Context) error {
		if err := m.reservation.check(ctx, s.TutorID, scheduling.SessionInterval(s), s.ID); err != nil {
			return err
		}
		if err := m.sessions.Update(ctx, s); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("Session rescheduled",
		zap.Int64("session_id", s.ID),
		zap.Int64("tutor_id", tutorID),
		zap.Time("from", prevStart),
		zap.Time("to", s.ScheduledAt),
		zap.Int("duration_minutes", s.DurationMinutes),
	)

	m.notifier.Notify(ctx, model.NewSessionEvent(model.EventSessionRescheduled, tutorID, s, s.Status, m.clock.Now()))

	return s, nil
}

// ExpireStaleRequests отменяет запросы, которые учитель не подтвердил до начала занятия.
// Возвращает число отменённых.
func (m *SessionLifecycleManager) ExpireStaleRequests(ctx context.Context) (int, error) {
	stale, err := m.sessions.GetRequestedBefore(ctx, m.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("get stale requests: %w", err)
	}

	var (
		expired int
		errs    []error
	)
	for _, s := range stale {
		_, err := m.cancel(ctx, s.ID, systemActor, ExpiredRequestReason)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, model.ErrConcurrencyConflict), errors.Is(err, model.ErrInvalidTransition):
			// Занятие изменили параллельно, оно больше не REQUESTED
			m.logger.Debug("Stale request changed concurrently", zap.Int64("session_id", s.ID))
		default:
			errs = append(errs, fmt.Errorf("expire session %d: %w", s.ID, err))
		}
	}

	if expired > 0 {
		m.logger.Info("Stale requests expired", zap.Int("count", expired))
	}

	return expired, errors.Join(errs...)
}

// changeStatus общий путь смены статуса: участник, ребро, роль, условие,
// затем apply и запись с проверкой версии
func (m *SessionLifecycleManager) changeStatus(ctx context.Context, sessionID int64, a actor, to model.SessionStatus, apply func(*model.TutoringSession) error) (*model.TutoringSession, error) {
	s, err := loadSession(ctx, m.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(s, a); err != nil {
		return nil, err
	}
	if err := checkTransition(s, a, to, m.clock.Now()); err != nil {
		return nil, err
	}
	if err := apply(s); err != nil {
		return nil, err
	}

	prev := s.Status
	s.Status = to

	if err := m.save(ctx, s, prev); err != nil {
		return nil, err
	}

	m.logger.Info("Session status changed",
		zap.Int64("session_id", s.ID),
		a.field(),
		zap.String("from", string(prev)),
		zap.String("to", string(to)),
	)

	eventType := model.EventSessionStatus
	if to == model.SessionStatusCancelled {
		eventType = model.EventSessionCancelled
	}
	m.notifier.Notify(ctx, model.NewSessionEvent(eventType, a.eventActorID(), s, prev, m.clock.Now()))

	return s, nil
}

// save записывает смену статуса. Если REQUESTED не блокирует время,
// подтверждение проверяет конфликты под блокировкой учителя.
func (m *SessionLifecycleManager) save(ctx context.Context, s *model.TutoringSession, prev model.SessionStatus) error {
	if prev == model.SessionStatusRequested && s.Status == model.SessionStatusScheduled && !m.guard.Policy().RequestedBlocks {
		return m.tx.WithTutorLock(ctx, s.TutorID, func(ctx context.Context) error {
			if err := m.reservation.checkConflicts(ctx, s.TutorID, scheduling.SessionInterval(s), s.ID); err != nil {
				return err
			}
			if err := m.sessions.Update(ctx, s); err != nil {
				return fmt.Errorf("update session: %w", err)
			}
			return nil
		})
	}

	if err := m.sessions.Update(ctx, s); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// loadForTutor загружает незавершённое занятие для правки учителем
func (m *SessionLifecycleManager) loadForTutor(ctx context.Context, sessionID, tutorID int64) (*model.TutoringSession, error) {
	s, err := loadSession(ctx, m.sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(s, userActor(tutorID)); err != nil {
		return nil, err
	}
	if s.TutorID != tutorID {
		return nil, model.UnauthorizedErrorf("only the tutor can edit session %d", sessionID)
	}
	if s.Status.IsTerminal() {
		return nil, &model.TransitionError{From: s.Status, To: s.Status, Reason: "session is closed"}
	}
	return s, nil
}
