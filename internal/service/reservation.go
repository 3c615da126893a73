package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/scheduling"
)

// reservation проверяет окно занятия заново по данным хранилища.
// Вызывается внутри Transactor.WithTutorLock.
type reservation struct {
	slots    TimeSlotStore
	sessions SessionStore
	expander *scheduling.Expander
	guard    *scheduling.ConflictGuard
}

// checkCoverage требует, чтобы candidate целиком лежал в доступном окне учителя
func (r *reservation) checkCoverage(ctx context.Context, tutorID int64, candidate scheduling.Interval) error {
	slots, err := r.slots.GetByTutorID(ctx, tutorID)
	if err != nil {
		return fmt.Errorf("get tutor time slots: %w", err)
	}

	windows := r.expander.Expand(slots, candidate.Start, candidate.End)
	if !scheduling.Covers(windows, candidate) {
		return fmt.Errorf("%w: %s - %s is outside tutor availability",
			model.ErrSlotUnavailable, candidate.Start.Format(timeLayout), candidate.End.Format(timeLayout))
	}

	return nil
}

// checkConflicts требует отсутствия блокирующих занятий в candidate, кроме excludeID
func (r *reservation) checkConflicts(ctx context.Context, tutorID int64, candidate scheduling.Interval, excludeID int64) error {
	sessions, err := r.sessions.GetByTutorInRange(ctx, tutorID, candidate.Start, candidate.End, r.guard.Policy().BlockingStatuses())
	if err != nil {
		return fmt.Errorf("get tutor sessions: %w", err)
	}

	if conflict := r.guard.FirstConflict(candidate, sessions, excludeID); conflict != nil {
		return fmt.Errorf("%w: overlaps session %d", model.ErrSlotUnavailable, conflict.ID)
	}

	return nil
}

func (r *reservation) check(ctx context.Context, tutorID int64, candidate scheduling.Interval, excludeID int64) error {
	if err := r.checkCoverage(ctx, tutorID, candidate); err != nil {
		return err
	}
	return r.checkConflicts(ctx, tutorID, candidate, excludeID)
}

const timeLayout = "2006-01-02 15:04"
