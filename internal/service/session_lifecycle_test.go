package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

func TestLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mondaySlot(t, 10, 12)

	s, err := f.book(f.student.ID, mondayAt(10, 0), 60)
	require.NoError(t, err)

	s, err = f.lifecycle.UpdateSessionStatus(ctx, s.ID, f.tutor.ID, model.SessionStatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusScheduled, s.Status)

	f.clock.Set(mondayAt(10, 0))
	s, err = f.lifecycle.UpdateSessionStatus(ctx, s.ID, f.tutor.ID, model.SessionStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, s.Status)

	s, err = f.lifecycle.CompleteSession(ctx, s.ID, f.tutor.ID, " chain rule covered ")
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, s.Status)
	assert.Equal(t, "chain rule covered", s.SessionSummary)

	stored := f.stored(t, s.ID)
	assert.Equal(t, model.SessionStatusCompleted, stored.Status)
	assert.Equal(t, 4, stored.Version)

	assert.Equal(t, []model.SessionEventType{
		model.EventSessionRequested,
		model.EventSessionStatus,
		model.EventSessionStatus,
		model.EventSessionStatus,
	}, f.notifier.types())
}

func TestLifecycle_NoShow(t *testing.T) {
	f := newFixture(t)
	s := f.seedSession(t, model.SessionStatusInProgress, mondayAt(10, 0), 60)

	s, err := f.lifecycle.UpdateSessionStatus(context.Background(), s.ID, f.tutor.ID, model.SessionStatusNoShow)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusNoShow, s.Status)
}

func TestLifecycle_BeginBeforeStart(t *testing.T) {
	f := newFixture(t)
	s := f.seedSession(t, model.SessionStatusScheduled, mondayAt(10, 0), 60)
	f.clock.Set(mondayAt(9, 59))

	_, err := f.lifecycle.UpdateSessionStatus(context.Background(), s.ID, f.tutor.ID, model.SessionStatusInProgress)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	var te *model.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, model.SessionStatusScheduled, te.From)
	assert.Equal(t, model.SessionStatusScheduled, f.stored(t, s.ID).Status)
}

func TestLifecycle_InvalidTransitionsLeaveSessionUnchanged(t *testing.T) {
	ctx := context.Background()

	for _, from := range model.AllSessionStatuses {
		for _, to := range model.AllSessionStatuses {
			if CanTransition(from, to) {
				continue
			}

			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newFixture(t)
				f.clock.Set(mondayAt(12, 0))
				s := f.seedSession(t, from, mondayAt(10, 0), 60)
				before := f.stored(t, s.ID)

				_, err := f.lifecycle.UpdateSessionStatus(ctx, s.ID, f.tutor.ID, to)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)

				_, err = f.lifecycle.UpdateSessionStatus(ctx, s.ID, f.student.ID, to)
				assert.ErrorIs(t, err, model.ErrInvalidTransition)

				assert.Equal(t, before, f.stored(t, s.ID))
			})
		}
	}
}

func TestLifecycle_CompletedIsFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seedSession(t, model.SessionStatusCompleted, mondayAt(10, 0), 60)

	for _, to := range model.AllSessionStatuses {
		_, err := f.lifecycle.UpdateSessionStatus(ctx, s.ID, f.tutor.ID, to)
		assert.ErrorIs(t, err, model.ErrInvalidTransition, "to %s", to)
	}

	_, err := f.lifecycle.CancelSession(ctx, s.ID, f.tutor.ID, "too late")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
	_, err = f.lifecycle.CompleteSession(ctx, s.ID, f.tutor.ID, "again")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestLifecycle_Roles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(mondayAt(10, 30))

	requested := f.seedSession(t, model.SessionStatusRequested, mondayAt(10, 0), 30)
	scheduled := f.seedSession(t, model.SessionStatusScheduled, mondayAt(11, 0), 30)
	inProgress := f.seedSession(t, model.SessionStatusInProgress, mondayAt(10, 0), 60)

	tests := []struct {
		name    string
		session *model.TutoringSession
		actor   int64
		to      model.SessionStatus
	}{
		{"student accepts", requested, f.student.ID, model.SessionStatusScheduled},
		{"student begins", scheduled, f.student.ID, model.SessionStatusInProgress},
		{"student completes", inProgress, f.student.ID, model.SessionStatusCompleted},
		{"student marks no-show", inProgress, f.student.ID, model.SessionStatusNoShow},
		{"outsider accepts", requested, f.student2.ID, model.SessionStatusScheduled},
		{"outsider completes", inProgress, f.student2.ID, model.SessionStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lifecycle.UpdateSessionStatus(ctx, tt.session.ID, tt.actor, tt.to)
			assert.ErrorIs(t, err, model.ErrUnauthorizedAction)
			assert.Equal(t, tt.session.Status, f.stored(t, tt.session.ID).Status)
		})
	}

	_, err := f.lifecycle.UpdateSessionStatus(ctx, 9999, f.tutor.ID, model.SessionStatusScheduled)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.lifecycle.UpdateSessionStatus(ctx, requested.ID, f.tutor.ID, "DONE")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestLifecycle_StatusUpdateCannotCancel(t *testing.T) {
	f := newFixture(t)
	s := f.seedSession(t, model.SessionStatusScheduled, mondayAt(10, 0), 60)

	_, err := f.lifecycle.UpdateSessionStatus(context.Background(), s.ID, f.student.ID, model.SessionStatusCancelled)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Equal(t, model.SessionStatusScheduled, f.stored(t, s.ID).Status)
}

func TestCancelSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []struct {
		name string
		id   func() int64
	}{
		{"student", func() int64 { return f.student.ID }},
		{"tutor", func() int64 { return f.tutor.ID }},
	} {
		for _, from := range []model.SessionStatus{model.SessionStatusRequested, model.SessionStatusScheduled} {
			t.Run(actor.name+" cancels "+string(from), func(t *testing.T) {
				s := f.seedSession(t, from, mondayAt(10, 0), 60)

				cancelled, err := f.lifecycle.CancelSession(ctx, s.ID, actor.id(), "  sick  ")
				require.NoError(t, err)

				assert.Equal(t, model.SessionStatusCancelled, cancelled.Status)
				assert.Equal(t, "sick", cancelled.CancellationReason)
				require.NotNil(t, cancelled.CancelledBy)
				assert.Equal(t, actor.id(), *cancelled.CancelledBy)
				assert.Equal(t, cancelled, f.stored(t, s.ID))
			})
		}
	}
}

func TestCancelSession_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seedSession(t, model.SessionStatusScheduled, mondayAt(10, 0), 60)

	_, err := f.lifecycle.CancelSession(ctx, s.ID, f.student.ID, "   ")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.lifecycle.CancelSession(ctx, s.ID, f.student2.ID, "not mine")
	assert.ErrorIs(t, err, model.ErrUnauthorizedAction)

	inProgress := f.seedSession(t, model.SessionStatusInProgress, mondayAt(14, 0), 60)
	_, err = f.lifecycle.CancelSession(ctx, inProgress.ID, f.tutor.ID, "stop")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.lifecycle.CancelSession(ctx, s.ID, f.student.ID, "once")
	require.NoError(t, err)
	_, err = f.lifecycle.CancelSession(ctx, s.ID, f.student.ID, "twice")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

// staleSessions подменяет сохранённую версию между чтением и записью
type staleSessions struct {
	SessionStore
	interfere func(id int64)
}

func (s *staleSessions) GetByID(ctx context.Context, id int64) (*model.TutoringSession, error) {
	session, err := s.SessionStore.GetByID(ctx, id)
	if err == nil && session != nil && s.interfere != nil {
		s.interfere(id)
	}
	return session, err
}

func TestLifecycle_ConcurrencyConflict(t *testing.T) {
	var stale *staleSessions
	f := newFixture(t, withSessionStore(func(s SessionStore) SessionStore {
		stale = &staleSessions{SessionStore: s}
		return stale
	}))
	ctx := context.Background()
	s := f.seedSession(t, model.SessionStatusScheduled, mondayAt(10, 0), 60)

	stale.interfere = func(id int64) {
		stale.interfere = nil
		other := f.stored(t, id)
		other.TutorNotes = "edited elsewhere"
		require.NoError(t, f.store.Sessions().Update(ctx, other))
	}

	_, err := f.lifecycle.CancelSession(ctx, s.ID, f.student.ID, "conflict")
	assert.ErrorIs(t, err, model.ErrConcurrencyConflict)

	stored := f.stored(t, s.ID)
	assert.Equal(t, model.SessionStatusScheduled, stored.Status)
	assert.Equal(t, "edited elsewhere", stored.TutorNotes)
}

func TestAddSessionNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seedSession(t, model.SessionStatusRequested, mondayAt(10, 0), 60)

	s, err := f.lifecycle.AddSessionNotes(ctx, s.ID, f.tutor.ID, "bring textbook")
	require.NoError(t, err)
	s, err = f.lifecycle.AddSessionNotes(ctx, s.ID, f.tutor.ID, "chapter 3")
	require.NoError(t, err)
	assert.Equal(t, "bring textbook\nchapter 3", s.TutorNotes)
	assert.Equal(t, "bring textbook\nchapter 3", f.stored(t, s.ID).TutorNotes)

	_, err = f.lifecycle.AddSessionNotes(ctx, s.ID, f.student.ID, "me too")
	assert.ErrorIs(t, err, model.ErrUnauthorizedAction)

	_, err = f.lifecycle.AddSessionNotes(ctx, s.ID, f.tutor.ID, "")
	assert.ErrorIs(t, err, model.ErrValidation)

	closed := f.seedSession(t, model.SessionStatusNoShow, mondayAt(14, 0), 60)
	_, err = f.lifecycle.AddSessionNotes(ctx, closed.ID, f.tutor.ID, "late note")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestUpdateTutoringSession_Reschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mondaySlot(t, 10, 12)

	s, err := f.book(f.student.ID, mondayAt(10, 0), 30)
	require.NoError(t, err)
	_, err = f.book(f.student2.ID, mondayAt(11, 0), 30)
	require.NoError(t, err)

	// Сдвиг внутри своего же интервала не конфликтует с самим собой
	start := mondayAt(10, 15)
	s, err = f.lifecycle.UpdateTutoringSession(ctx, s.ID, f.tutor.ID, SessionChanges{ScheduledAt: &start})
	require.NoError(t, err)
	assert.Equal(t, start, s.ScheduledAt)

	busy := mondayAt(10, 45)
	_, err = f.lifecycle.UpdateTutoringSession(ctx, s.ID, f.tutor.ID, SessionChanges{ScheduledAt: &busy})
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	outside := mondayAt(12, 0)
	_, err = f.lifecycle.UpdateTutoringSession(ctx, s.ID, f.tutor.ID, SessionChanges{ScheduledAt: &outside})
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	longer := 90
	_, err = f.lifecycle.UpdateTutoringSession(ctx, s.ID, f.tutor.ID, SessionChanges{DurationMinutes: &longer})
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	assert.Equal(t, start, f.stored(t, s.ID).ScheduledAt)
	assert.Equal(t, 30, f.stored(t, s.ID).DurationMinutes)
	assert.Contains(t, f.notifier.types(), model.EventSessionRescheduled)
}

func TestUpdateTutoringSession_Details(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.seedSession(t, model.SessionStatusScheduled, mondayAt(10, 0), 60)

	course, err := f.courses.CreateCourse(ctx, f.tutor.ID, "Algebra", "", 45)
	require.NoError(t, err)
	high := model.PriorityHigh
	notes := "replace notes"

	s, err = f.lifecycle.UpdateTutoringSession(ctx, s.ID, f.tutor.ID, SessionChanges{
		CourseID:   &course.ID,
		Priority:   &high,
		TutorNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, course.ID, s.CourseID)
	assert.Equal(t, model.PriorityHigh, s.Priority)
	assert.Equal(t, "replace notes", s.TutorNotes)
	assert.Equal(t, mondayAt(10, 0), s.ScheduledAt)
}

func TestUpdateTutoringSession_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mondaySlot(t, 10, 12)
	s := f.seedSession(t, model.SessionStatusScheduled, mondayAt(10, 0), 60)

	start := mondayAt(11, 0)
	zero := 0
	bad := model.Priority("NOW")
	past := f.clock.Now().Add(-time.Hour)

	tests := []struct {
		name    string
		actor   int64
		changes SessionChanges
		want    error
	}{
		{"empty", f.tutor.ID, SessionChanges{}, model.ErrValidation},
		{"zero duration", f.tutor.ID, SessionChanges{DurationMinutes: &zero}, model.ErrValidation},
		{"bad priority", f.tutor.ID, SessionChanges{Priority: &bad}, model.ErrValidation},
		{"past start", f.tutor.ID, SessionChanges{ScheduledAt: &past}, model.ErrValidation},
		{"student", f.student.ID, SessionChanges{ScheduledAt: &start}, model.ErrUnauthorizedAction},
		{"outsider", f.student2.ID, SessionChanges{ScheduledAt: &start}, model.ErrUnauthorizedAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lifecycle.UpdateTutoringSession(ctx, s.ID, tt.actor, tt.changes)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	closed := f.seedSession(t, model.SessionStatusCancelled, mondayAt(11, 0), 30)
	_, err := f.lifecycle.UpdateTutoringSession(ctx, closed.ID, f.tutor.ID, SessionChanges{ScheduledAt: &start})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	running := f.seedSession(t, model.SessionStatusInProgress, mondayAt(14, 0), 60)
	later := mondayAt(15, 0)
	_, err = f.lifecycle.UpdateTutoringSession(ctx, running.ID, f.tutor.ID, SessionChanges{ScheduledAt: &later})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestExpireStaleRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.seedSession(t, model.SessionStatusRequested, mondayAt(10, 0), 60)
	future := f.seedSession(t, model.SessionStatusRequested, mondayAt(15, 0), 60)
	scheduled := f.seedSession(t, model.SessionStatusScheduled, mondayAt(9, 0), 60)

	f.clock.Set(mondayAt(10, 5))
	n, err := f.lifecycle.ExpireStaleRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expired := f.stored(t, stale.ID)
	assert.Equal(t, model.SessionStatusCancelled, expired.Status)
	assert.Equal(t, ExpiredRequestReason, expired.CancellationReason)
	assert.Nil(t, expired.CancelledBy)

	assert.Equal(t, model.SessionStatusRequested, f.stored(t, future.ID).Status)
	assert.Equal(t, model.SessionStatusScheduled, f.stored(t, scheduled.ID).Status)

	n, err = f.lifecycle.ExpireStaleRequests(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetAndListSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	requested := f.seedSession(t, model.SessionStatusRequested, mondayAt(10, 0), 60)
	f.seedSession(t, model.SessionStatusCancelled, mondayAt(12, 0), 60)

	got, err := f.lifecycle.GetSession(ctx, requested.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, requested.ID, got.ID)

	_, err = f.lifecycle.GetSession(ctx, requested.ID, f.student2.ID)
	assert.ErrorIs(t, err, model.ErrUnauthorizedAction)

	// Нулевой id не даёт прав системы
	_, err = f.lifecycle.GetSession(ctx, requested.ID, 0)
	assert.ErrorIs(t, err, model.ErrUnauthorizedAction)
	_, err = f.lifecycle.CancelSession(ctx, requested.ID, 0, "no reason")
	assert.ErrorIs(t, err, model.ErrUnauthorizedAction)
	assert.Equal(t, model.SessionStatusRequested, f.stored(t, requested.ID).Status)

	all, err := f.lifecycle.ListSessions(ctx, f.tutor.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.lifecycle.ListSessions(ctx, f.student.ID, model.ActiveSessionStatuses)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, requested.ID, active[0].ID)

	none, err := f.lifecycle.ListSessions(ctx, f.student2.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.lifecycle.ListSessions(ctx, f.student.ID, []model.SessionStatus{"LOST"})
	assert.ErrorIs(t, err, model.ErrValidation)
}
