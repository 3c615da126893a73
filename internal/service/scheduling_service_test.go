package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/scheduling"
)

func TestScheduleSession(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	s, err := f.scheduler.ScheduleSession(context.Background(), BookingRequest{
		StudentID:       f.student.ID,
		TutorID:         f.tutor.ID,
		CourseID:        f.course.ID,
		Start:           mondayAt(10, 0),
		DurationMinutes: 30,
		StudentQuestion: "  derivatives  ",
	})
	require.NoError(t, err)

	assert.NotZero(t, s.ID)
	assert.Equal(t, model.SessionStatusRequested, s.Status)
	assert.Equal(t, model.PriorityMedium, s.Priority)
	assert.Equal(t, "derivatives", s.StudentQuestion)
	assert.Equal(t, 1, s.Version)
	assert.Equal(t, s, f.stored(t, s.ID))

	require.Equal(t, []model.SessionEventType{model.EventSessionRequested}, f.notifier.types())
	assert.Equal(t, []int64{f.tutor.ID}, f.notifier.events[0].Recipients())
}

func TestScheduleSession_OverlapRejected(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	_, err := f.book(f.student.ID, mondayAt(10, 0), 30)
	require.NoError(t, err)

	_, err = f.book(f.student2.ID, mondayAt(10, 15), 30)
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	_, err = f.book(f.student2.ID, mondayAt(10, 30), 30)
	assert.NoError(t, err)
}

func TestScheduleSession_CancelFreesWindow(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	s, err := f.book(f.student.ID, mondayAt(10, 0), 30)
	require.NoError(t, err)
	assert.NotContains(t, f.findMonday(t, 30), window(mondayAt(10, 0), mondayAt(10, 30)))

	_, err = f.lifecycle.CancelSession(context.Background(), s.ID, f.student.ID, "changed plans")
	require.NoError(t, err)

	assert.Contains(t, f.findMonday(t, 30), window(mondayAt(10, 0), mondayAt(10, 30)))
}

func TestScheduleSession_OutsideAvailability(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	tests := []struct {
		name    string
		start   time.Time
		minutes int
	}{
		{"before slot", mondayAt(9, 30), 60},
		{"runs past slot end", mondayAt(11, 30), 60},
		{"other day", mondayAt(10, 0).AddDate(0, 0, 1), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.book(f.student.ID, tt.start, tt.minutes)
			assert.ErrorIs(t, err, model.ErrSlotUnavailable)
		})
	}

	sessions, err := f.store.Sessions().GetByParticipant(context.Background(), f.tutor.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestScheduleSession_AdjacentSlotsNotJoined(t *testing.T) {
	f := newFixture(t)
	f.mondaySlotMinutes(t, 10*60, 10*60+45)
	f.mondaySlotMinutes(t, 10*60+45, 11*60+30)

	assert.Empty(t, f.findMonday(t, 60), "an hour fits in neither slot")
	assert.Equal(t, []model.AvailableWindow{
		window(mondayAt(10, 0), mondayAt(10, 45)),
		window(mondayAt(10, 45), mondayAt(11, 30)),
	}, f.findMonday(t, 45))

	_, err := f.book(f.student.ID, mondayAt(10, 15), 60)
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)

	_, err = f.book(f.student.ID, mondayAt(10, 45), 45)
	assert.NoError(t, err)
}

func TestScheduleSession_Validation(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	base := BookingRequest{
		StudentID:       f.student.ID,
		TutorID:         f.tutor.ID,
		CourseID:        f.course.ID,
		Start:           mondayAt(10, 0),
		DurationMinutes: 30,
	}

	tests := []struct {
		name   string
		modify func(*BookingRequest)
		want   error
	}{
		{"zero duration", func(r *BookingRequest) { r.DurationMinutes = 0 }, model.ErrValidation},
		{"negative duration", func(r *BookingRequest) { r.DurationMinutes = -30 }, model.ErrValidation},
		{"start in past", func(r *BookingRequest) { r.Start = f.clock.Now().Add(-time.Minute) }, model.ErrValidation},
		{"tutor books self", func(r *BookingRequest) { r.StudentID = f.tutor.ID }, model.ErrValidation},
		{"no course", func(r *BookingRequest) { r.CourseID = 0 }, model.ErrValidation},
		{"bad priority", func(r *BookingRequest) { r.Priority = "URGENT" }, model.ErrValidation},
		{"unknown student", func(r *BookingRequest) { r.StudentID = 9999 }, model.ErrNotFound},
		{"unknown tutor", func(r *BookingRequest) { r.TutorID = 9999 }, model.ErrNotFound},
		{"unknown course", func(r *BookingRequest) { r.CourseID = 9999 }, model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.modify(&req)
			_, err := f.scheduler.ScheduleSession(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestScheduleSession_ConcurrentIdenticalRequests(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	const n = 32
	var (
		wg          sync.WaitGroup
		successes   atomic.Int32
		unavailable atomic.Int32
		other       atomic.Int32
		start       = make(chan struct{})
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.book(f.student.ID, mondayAt(10, 0), 60)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, model.ErrSlotUnavailable):
				unavailable.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(n-1), unavailable.Load())
	assert.Zero(t, other.Load())
}

func TestScheduleSession_ConcurrentOverlappingRequests(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 9, 17)

	var wg sync.WaitGroup
	for i := 0; i < 48; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := mondayAt(9, 0).Add(time.Duration(i*10) * time.Minute)
			_, _ = f.book(f.student.ID, start, 45)
		}(i)
	}
	wg.Wait()

	sessions, err := f.store.Sessions().GetByTutorInRange(context.Background(), f.tutor.ID,
		monday, monday.AddDate(0, 0, 1), model.ActiveSessionStatuses)
	require.NoError(t, err)
	require.NotEmpty(t, sessions)

	for i := 0; i < len(sessions); i++ {
		for j := i + 1; j < len(sessions); j++ {
			a, b := scheduling.SessionInterval(sessions[i]), scheduling.SessionInterval(sessions[j])
			assert.False(t, a.Overlaps(b), "sessions %d and %d overlap", sessions[i].ID, sessions[j].ID)
		}
	}
}

func TestScheduleSession_ConcurrentDifferentTutors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mondaySlot(t, 10, 12)

	other, err := f.users.RegisterUser(ctx, 1002, "other", "", "", "")
	require.NoError(t, err)
	_, err = f.users.MakeTutor(ctx, other.ID)
	require.NoError(t, err)
	course, err := f.courses.CreateCourse(ctx, other.ID, "Physics", "", 60)
	require.NoError(t, err)
	_, err = f.timeSlots.CreateTimeSlot(ctx, other.ID, time.Monday, 600, 720, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, req := range []BookingRequest{
		{StudentID: f.student.ID, TutorID: f.tutor.ID, CourseID: f.course.ID, Start: mondayAt(10, 0), DurationMinutes: 60},
		{StudentID: f.student.ID, TutorID: other.ID, CourseID: course.ID, Start: mondayAt(10, 0), DurationMinutes: 60},
	} {
		wg.Add(1)
		go func(i int, req BookingRequest) {
			defer wg.Done()
			_, errs[i] = f.scheduler.ScheduleSession(ctx, req)
		}(i, req)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

// flakySessions отдаёт ErrWriteConflict на первые failures вызовов Create
type flakySessions struct {
	SessionStore
	failures atomic.Int32
	calls    atomic.Int32
}

func (s *flakySessions) Create(ctx context.Context, session *model.TutoringSession) error {
	s.calls.Add(1)
	if s.failures.Add(-1) >= 0 {
		return fmt.Errorf("create session: %w", model.ErrWriteConflict)
	}
	return s.SessionStore.Create(ctx, session)
}

func TestScheduleSession_RetriesWriteConflict(t *testing.T) {
	var flaky *flakySessions
	f := newFixture(t, withSessionStore(func(s SessionStore) SessionStore {
		flaky = &flakySessions{SessionStore: s}
		return flaky
	}))
	f.mondaySlot(t, 10, 12)

	flaky.failures.Store(2)
	s, err := f.book(f.student.ID, mondayAt(10, 0), 60)
	require.NoError(t, err)
	assert.Equal(t, int32(3), flaky.calls.Load())

	sessions, err := f.store.Sessions().GetByParticipant(context.Background(), f.student.ID, nil)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, s.ID, sessions[0].ID)
}

func TestScheduleSession_RetriesExhausted(t *testing.T) {
	var flaky *flakySessions
	f := newFixture(t, withSessionStore(func(s SessionStore) SessionStore {
		flaky = &flakySessions{SessionStore: s}
		return flaky
	}))
	f.mondaySlot(t, 10, 12)

	flaky.failures.Store(100)
	_, err := f.book(f.student.ID, mondayAt(10, 0), 60)
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)
	assert.NotErrorIs(t, err, model.ErrWriteConflict)
	assert.Equal(t, int32(DefaultBookingRetries+1), flaky.calls.Load())
	assert.Empty(t, f.notifier.types())
}

func TestScheduleSession_RequestedDoesNotBlock(t *testing.T) {
	f := newFixture(t, withPolicy(scheduling.BlockingPolicy{RequestedBlocks: false}))
	ctx := context.Background()
	f.mondaySlot(t, 10, 12)

	first, err := f.book(f.student.ID, mondayAt(10, 0), 60)
	require.NoError(t, err)
	second, err := f.book(f.student2.ID, mondayAt(10, 30), 60)
	require.NoError(t, err)

	_, err = f.lifecycle.UpdateSessionStatus(ctx, first.ID, f.tutor.ID, model.SessionStatusScheduled)
	require.NoError(t, err)

	// Второй запрос пересекается с подтверждённым
	_, err = f.lifecycle.UpdateSessionStatus(ctx, second.ID, f.tutor.ID, model.SessionStatusScheduled)
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)
	assert.Equal(t, model.SessionStatusRequested, f.stored(t, second.ID).Status)

	_, err = f.book(f.student2.ID, mondayAt(10, 30), 30)
	assert.ErrorIs(t, err, model.ErrSlotUnavailable)
}
