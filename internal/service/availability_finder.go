package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/scheduling"
)

// MaxSearchRange ограничивает длину окна поиска свободного времени
const MaxSearchRange = 92 * 24 * time.Hour

// AvailabilityQuery параметры поиска свободного времени
type AvailabilityQuery struct {
	TutorID         int64
	StudentID       int64  // 0 = анонимный просмотр
	CourseID        *int64 // nil = любой курс учителя
	From            time.Time
	To              time.Time
	DurationMinutes int
}

// AvailabilityFinder строит список бронируемых окон. Только чтение, без блокировок.
type AvailabilityFinder struct {
	slots    TimeSlotStore
	sessions SessionStore
	users    UserDirectory
	courses  CourseCatalog
	expander *scheduling.Expander
	guard    *scheduling.ConflictGuard
	clock    scheduling.Clock
	logger   *zap.Logger
}

func NewAvailabilityFinder(
	slots TimeSlotStore,
	sessions SessionStore,
	users UserDirectory,
	courses CourseCatalog,
	expander *scheduling.Expander,
	guard *scheduling.ConflictGuard,
	clock scheduling.Clock,
	logger *zap.Logger,
) *AvailabilityFinder {
	return &AvailabilityFinder{
		slots:    slots,
		sessions: sessions,
		users:    users,
		courses:  courses,
		expander: expander,
		guard:    guard,
		clock:    clock,
		logger:   logger,
	}
}

// FindAvailableSlots возвращает предложения длиной DurationMinutes
// в [From, To), отсортированные по началу
func (f *AvailabilityFinder) FindAvailableSlots(ctx context.Context, q AvailabilityQuery) ([]model.AvailableWindow, error) {
	if q.DurationMinutes <= 0 {
		return nil, model.ValidationErrorf("duration must be positive, got %d", q.DurationMinutes)
	}
	if !q.From.Before(q.To) {
		return nil, model.ValidationErrorf("window start must be before window end")
	}
	if q.To.Sub(q.From) > MaxSearchRange {
		return nil, model.ValidationErrorf("search window is longer than %d days", int(MaxSearchRange.Hours()/24))
	}

	if _, err := requireTutor(ctx, f.users, q.TutorID); err != nil {
		return nil, err
	}
	if q.StudentID != 0 {
		if _, err := requireUser(ctx, f.users, q.StudentID); err != nil {
			return nil, err
		}
	}
	if q.CourseID != nil {
		if _, err := requireCourse(ctx, f.courses, *q.CourseID, q.TutorID); err != nil {
			return nil, err
		}
	}

	slots, err := f.slots.GetByTutorID(ctx, q.TutorID)
	if err != nil {
		return nil, fmt.Errorf("get tutor time slots: %w", err)
	}

	windows := f.expander.Expand(slots, q.From, q.To)
	if len(windows) == 0 {
		return nil, nil
	}

	sessions, err := f.sessions.GetByTutorInRange(ctx, q.TutorID, q.From, q.To, f.guard.Policy().BlockingStatuses())
	if err != nil {
		return nil, fmt.Errorf("get tutor sessions: %w", err)
	}

	d := time.Duration(q.DurationMinutes) * time.Minute
	offers := scheduling.FreeOffers(windows, f.guard.BusyIntervals(sessions), d, f.clock.Now())

	result := make([]model.AvailableWindow, 0, len(offers))
	for _, o := range offers {
		result = append(result, model.AvailableWindow{Start: o.Start, End: o.End})
	}

	f.logger.Debug("Available slots found",
		zap.Int64("tutor_id", q.TutorID),
		zap.Int("windows", len(windows)),
		zap.Int("busy", len(sessions)),
		zap.Int("offers", len(result)),
	)

	return result, nil
}
