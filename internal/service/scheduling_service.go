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

// DefaultBookingRetries повторы при транзиентном конфликте записи
const DefaultBookingRetries = 3

// BookingRequest запрос студента на занятие
type BookingRequest struct {
	StudentID       int64
	TutorID         int64
	CourseID        int64
	Start           time.Time
	DurationMinutes int
	StudentQuestion string
	Priority        model.Priority
}

// SchedulingService единственный путь создания занятий
type SchedulingService struct {
	users       UserDirectory
	courses     CourseCatalog
	sessions    SessionStore
	tx          Transactor
	reservation *reservation
	notifier    Notifier
	clock       scheduling.Clock
	maxRetries  int
	logger      *zap.Logger
}

func NewSchedulingService(
	users UserDirectory,
	courses CourseCatalog,
	slots TimeSlotStore,
	sessions SessionStore,
	tx Transactor,
	expander *scheduling.Expander,
	guard *scheduling.ConflictGuard,
	notifier Notifier,
	clock scheduling.Clock,
	maxRetries int,
	logger *zap.Logger,
) *SchedulingService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &SchedulingService{
		users:    users,
		courses:  courses,
		sessions: sessions,
		tx:       tx,
		reservation: &reservation{
			slots:    slots,
			sessions: sessions,
			expander: expander,
			guard:    guard,
		},
		notifier:   orNop(notifier),
		clock:      clock,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// ScheduleSession проверяет окно под блокировкой учителя и создаёт занятие в статусе REQUESTED.
// Занятое или недоступное окно даёт model.ErrSlotUnavailable.
func (s *SchedulingService) ScheduleSession(ctx context.Context, req BookingRequest) (*model.TutoringSession, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	// Справочные проверки вне критической секции
	if _, err := requireUser(ctx, s.users, req.StudentID); err != nil {
		return nil, err
	}
	if _, err := requireTutor(ctx, s.users, req.TutorID); err != nil {
		return nil, err
	}
	if _, err := requireCourse(ctx, s.courses, req.CourseID, req.TutorID); err != nil {
		return nil, err
	}

	var session *model.TutoringSession
	for attempt := 0; ; attempt++ {
		var err error
		session, err = s.book(ctx, req)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrWriteConflict) {
			s.logger.Info("Booking rejected",
				zap.Int64("student_id", req.StudentID),
				zap.Int64("tutor_id", req.TutorID),
				zap.Time("start", req.Start),
				zap.Error(err),
			)
			return nil, err
		}
		if attempt >= s.maxRetries {
			s.logger.Warn("Booking retries exhausted",
				zap.Int64("tutor_id", req.TutorID),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: booking kept conflicting, search again", model.ErrSlotUnavailable)
		}
		s.logger.Debug("Retrying booking after write conflict",
			zap.Int64("tutor_id", req.TutorID),
			zap.Int("attempt", attempt+1),
		)
	}

	s.logger.Info("Session requested",
		zap.Int64("session_id", session.ID),
		zap.Int64("student_id", session.StudentID),
		zap.Int64("tutor_id", session.TutorID),
		zap.Time("scheduled_at", session.ScheduledAt),
		zap.Int("duration_minutes", session.DurationMinutes),
	)

	s.notifier.Notify(ctx, model.NewSessionEvent(model.EventSessionRequested, session.StudentID, session, "", s.clock.Now()))

	return session, nil
}

// book одна попытка: проверка и запись в одной критической секции.
// Занятие создаётся заново на каждую попытку.
func (s *SchedulingService) book(ctx context.Context, req BookingRequest) (*model.TutoringSession, error) {
	session := &model.TutoringSession{
		StudentID:       req.StudentID,
		TutorID:         req.TutorID,
		CourseID:        req.CourseID,
		ScheduledAt:     req.Start,
		DurationMinutes: req.DurationMinutes,
		Status:          model.SessionStatusRequested,
		Priority:        req.Priority,
		StudentQuestion: req.StudentQuestion,
	}
	candidate := scheduling.SessionInterval(session)

	err := s.tx.WithTutorLock(ctx, req.TutorID, func(ctx context.Context) error {
		if err := s.reservation.check(ctx, req.TutorID, candidate, 0); err != nil {
			return err
		}
		if err := s.sessions.Create(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SchedulingService) validate(req *BookingRequest) error {
	if req.DurationMinutes <= 0 {
		return model.ValidationErrorf("duration must be positive, got %d", req.DurationMinutes)
	}
	if req.Start.IsZero() {
		return model.ValidationErrorf("start time is required")
	}
	if req.Start.Before(s.clock.Now()) {
		return model.ValidationErrorf("start time %s is in the past", req.Start.Format(timeLayout))
	}
	if req.StudentID == req.TutorID {
		return model.ValidationErrorf("tutor cannot book own time")
	}
	if req.CourseID == 0 {
		return model.ValidationErrorf("course is required")
	}

	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if !req.Priority.Valid() {
		return model.ValidationErrorf("unknown priority %q", req.Priority)
	}

	req.StudentQuestion = strings.TrimSpace(req.StudentQuestion)
	return nil
}
