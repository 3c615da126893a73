package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

func TestFindAvailableSlots_TwoHourSlot(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	windows := f.findMonday(t, 60)

	assert.Equal(t, []model.AvailableWindow{
		window(mondayAt(10, 0), mondayAt(11, 0)),
		window(mondayAt(11, 0), mondayAt(12, 0)),
	}, windows)
}

func TestFindAvailableSlots_SubtractsBlockingSessions(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)

	f.seedSession(t, model.SessionStatusScheduled, mondayAt(10, 30), 30)
	f.seedSession(t, model.SessionStatusCancelled, mondayAt(11, 0), 30)
	f.seedSession(t, model.SessionStatusCompleted, mondayAt(11, 30), 30)

	windows := f.findMonday(t, 30)

	assert.Equal(t, []model.AvailableWindow{
		window(mondayAt(10, 0), mondayAt(10, 30)),
		window(mondayAt(11, 0), mondayAt(11, 30)),
		window(mondayAt(11, 30), mondayAt(12, 0)),
	}, windows)
}

func TestFindAvailableSlots_DropsShortFreePieces(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)
	f.seedSession(t, model.SessionStatusRequested, mondayAt(10, 45), 30)

	windows := f.findMonday(t, 45)

	// [10:00,10:45) подходит, [11:15,12:00) тоже ровно 45 минут
	assert.Equal(t, []model.AvailableWindow{
		window(mondayAt(10, 0), mondayAt(10, 45)),
		window(mondayAt(11, 15), mondayAt(12, 0)),
	}, windows)
}

func TestFindAvailableSlots_NeverOffersPast(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 12)
	f.clock.Set(mondayAt(10, 20))

	windows := f.findMonday(t, 60)
	assert.Equal(t, []model.AvailableWindow{window(mondayAt(11, 0), mondayAt(12, 0))}, windows)

	// Поиск от текущего момента
	now := f.clock.Now()
	fromNow, err := f.finder.FindAvailableSlots(context.Background(), AvailabilityQuery{
		TutorID:         f.tutor.ID,
		From:            now,
		To:              now.Add(14 * 24 * time.Hour),
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.NotEmpty(t, fromNow)
	for _, w := range fromNow {
		assert.False(t, w.Start.Before(now), "offer %s starts before now", w.Start)
	}
	assert.Equal(t, mondayAt(10, 20), fromNow[0].Start)
}

func TestFindAvailableSlots_SeveralWeeks(t *testing.T) {
	f := newFixture(t)
	f.mondaySlot(t, 10, 11)

	windows, err := f.finder.FindAvailableSlots(context.Background(), AvailabilityQuery{
		TutorID:         f.tutor.ID,
		From:            monday,
		To:              monday.AddDate(0, 0, 21),
		DurationMinutes: 60,
	})
	require.NoError(t, err)
	require.Len(t, windows, 3)
	for i, w := range windows {
		assert.Equal(t, mondayAt(10, 0).AddDate(0, 0, 7*i), w.Start)
	}
}

func TestFindAvailableSlots_CourseScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mondaySlot(t, 10, 12)

	q := AvailabilityQuery{
		TutorID:         f.tutor.ID,
		CourseID:        &f.course.ID,
		From:            monday,
		To:              monday.AddDate(0, 0, 1),
		DurationMinutes: 60,
	}
	windows, err := f.finder.FindAvailableSlots(ctx, q)
	require.NoError(t, err)
	assert.Len(t, windows, 2)

	other, err := f.users.RegisterUser(ctx, 1002, "other", "", "", "")
	require.NoError(t, err)
	_, err = f.users.MakeTutor(ctx, other.ID)
	require.NoError(t, err)
	foreign, err := f.courses.CreateCourse(ctx, other.ID, "Physics", "", 60)
	require.NoError(t, err)

	q.CourseID = &foreign.ID
	_, err = f.finder.FindAvailableSlots(ctx, q)
	assert.ErrorIs(t, err, model.ErrValidation)

	missing := int64(9999)
	q.CourseID = &missing
	_, err = f.finder.FindAvailableSlots(ctx, q)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFindAvailableSlots_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		q    AvailabilityQuery
		want error
	}{
		{
			name: "zero duration",
			q:    AvailabilityQuery{TutorID: f.tutor.ID, From: monday, To: mondayAt(23, 0)},
			want: model.ErrValidation,
		},
		{
			name: "empty range",
			q:    AvailabilityQuery{TutorID: f.tutor.ID, From: monday, To: monday, DurationMinutes: 30},
			want: model.ErrValidation,
		},
		{
			name: "range too long",
			q:    AvailabilityQuery{TutorID: f.tutor.ID, From: monday, To: monday.AddDate(1, 0, 0), DurationMinutes: 30},
			want: model.ErrValidation,
		},
		{
			name: "unknown tutor",
			q:    AvailabilityQuery{TutorID: 9999, From: monday, To: mondayAt(23, 0), DurationMinutes: 30},
			want: model.ErrNotFound,
		},
		{
			name: "user is not a tutor",
			q:    AvailabilityQuery{TutorID: f.student.ID, From: monday, To: mondayAt(23, 0), DurationMinutes: 30},
			want: model.ErrNotFound,
		},
		{
			name: "unknown student",
			q:    AvailabilityQuery{TutorID: f.tutor.ID, StudentID: 9999, From: monday, To: mondayAt(23, 0), DurationMinutes: 30},
			want: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.finder.FindAvailableSlots(ctx, tt.q)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFindAvailableSlots_NoSlots(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.findMonday(t, 30))
}
