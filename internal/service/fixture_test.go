package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/tutoring_scheduler/internal/scheduling"
)

// 2026-10-19 понедельник
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func mondayAt(hour, minute int) time.Time {
	return monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.SessionEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event model.SessionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []model.SessionEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	var types []model.SessionEventType
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}

type fixture struct {
	store    *memory.Store
	clock    *scheduling.FixedClock
	notifier *recordingNotifier

	timeSlots *TimeSlotService
	finder    *AvailabilityFinder
	scheduler *SchedulingService
	lifecycle *SessionLifecycleManager
	users     *UserService
	courses   *CourseService

	tutor    *model.User
	student  *model.User
	student2 *model.User
	course   *model.Course
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	policy   scheduling.BlockingPolicy
	sessions func(SessionStore) SessionStore
}

func withPolicy(p scheduling.BlockingPolicy) fixtureOption {
	return func(c *fixtureConfig) { c.policy = p }
}

func withSessionStore(wrap func(SessionStore) SessionStore) fixtureOption {
	return func(c *fixtureConfig) { c.sessions = wrap }
}

// newFixture собирает сервисы над хранилищем в памяти.
// Текущее время: воскресенье 2026-10-18 12:00 UTC.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := fixtureConfig{policy: scheduling.DefaultBlockingPolicy()}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := zap.NewNop()
	store := memory.NewStore()
	clock := scheduling.NewFixedClock(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	notifier := &recordingNotifier{}
	expander := scheduling.NewExpander(time.UTC, clock)
	guard := scheduling.NewConflictGuard(cfg.policy)

	var sessions SessionStore = store.Sessions()
	if cfg.sessions != nil {
		sessions = cfg.sessions(sessions)
	}
	slots := store.TimeSlots()
	users := store.Users()
	courses := store.Courses()

	f := &fixture{
		store:     store,
		clock:     clock,
		notifier:  notifier,
		timeSlots: NewTimeSlotService(slots, users, store, time.UTC, clock, logger),
		finder:    NewAvailabilityFinder(slots, sessions, users, courses, expander, guard, clock, logger),
		scheduler: NewSchedulingService(users, courses, slots, sessions, store, expander, guard, notifier, clock, DefaultBookingRetries, logger),
		lifecycle: NewSessionLifecycleManager(sessions, slots, courses, store, expander, guard, notifier, clock, logger),
		users:     NewUserService(users, logger),
		courses:   NewCourseService(courses, users, logger),
	}

	ctx := context.Background()
	var err error

	f.tutor, err = f.users.RegisterUser(ctx, 1001, "tutor", "Anna", "", "ru")
	require.NoError(t, err)
	f.tutor, err = f.users.MakeTutor(ctx, f.tutor.ID)
	require.NoError(t, err)

	f.student, err = f.users.RegisterUser(ctx, 2001, "student", "Ivan", "", "ru")
	require.NoError(t, err)
	f.student2, err = f.users.RegisterUser(ctx, 2002, "student2", "Olga", "", "ru")
	require.NoError(t, err)

	f.course, err = f.courses.CreateCourse(ctx, f.tutor.ID, "Math", "", 60)
	require.NoError(t, err)

	return f
}

// mondaySlot создаёт слот учителя по понедельникам
func (f *fixture) mondaySlot(t *testing.T, startHour, endHour int) *model.TimeSlot {
	t.Helper()
	slot, err := f.timeSlots.CreateTimeSlot(context.Background(), f.tutor.ID, time.Monday, startHour*60, endHour*60, nil)
	require.NoError(t, err)
	return slot
}

// mondaySlotMinutes создаёт слот с границами в минутах от полуночи
func (f *fixture) mondaySlotMinutes(t *testing.T, startMinute, endMinute int) *model.TimeSlot {
	t.Helper()
	slot, err := f.timeSlots.CreateTimeSlot(context.Background(), f.tutor.ID, time.Monday, startMinute, endMinute, nil)
	require.NoError(t, err)
	return slot
}

func (f *fixture) book(studentID int64, start time.Time, minutes int) (*model.TutoringSession, error) {
	return f.scheduler.ScheduleSession(context.Background(), BookingRequest{
		StudentID:       studentID,
		TutorID:         f.tutor.ID,
		CourseID:        f.course.ID,
		Start:           start,
		DurationMinutes: minutes,
	})
}

func (f *fixture) findMonday(t *testing.T, minutes int) []model.AvailableWindow {
	t.Helper()
	windows, err := f.finder.FindAvailableSlots(context.Background(), AvailabilityQuery{
		TutorID:         f.tutor.ID,
		StudentID:       f.student.ID,
		From:            monday,
		To:              mondayAt(23, 59),
		DurationMinutes: minutes,
	})
	require.NoError(t, err)
	return windows
}

// seedSession кладёт занятие в нужном статусе напрямую в хранилище
func (f *fixture) seedSession(t *testing.T, status model.SessionStatus, start time.Time, minutes int) *model.TutoringSession {
	t.Helper()
	s := &model.TutoringSession{
		StudentID:       f.student.ID,
		TutorID:         f.tutor.ID,
		CourseID:        f.course.ID,
		ScheduledAt:     start,
		DurationMinutes: minutes,
		Status:          status,
		Priority:        model.PriorityMedium,
	}
	require.NoError(t, f.store.Sessions().Create(context.Background(), s))
	return s
}

func (f *fixture) stored(t *testing.T, id int64) *model.TutoringSession {
	t.Helper()
	s, err := f.store.Sessions().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func window(start, end time.Time) model.AvailableWindow {
	return model.AvailableWindow{Start: start, End: end}
}
