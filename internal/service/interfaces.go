package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// Хранилища возвращают (nil, nil), если запись не найдена.

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type UserStore interface {
	UserDirectory
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

type CourseCatalog interface {
	GetByID(ctx context.Context, id int64) (*model.Course, error)
}

type CourseStore interface {
	CourseCatalog
	Create(ctx context.Context, course *model.Course) error
	GetByTutorID(ctx context.Context, tutorID int64) ([]*model.Course, error)
}

type TimeSlotStore interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	GetByID(ctx context.Context, id int64) (*model.TimeSlot, error)
	GetByTutorID(ctx context.Context, tutorID int64) ([]*model.TimeSlot, error)
	GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]*model.TimeSlot, error)
	Update(ctx context.Context, slot *model.TimeSlot) error
	Delete(ctx context.Context, id int64) error
}

// SessionStore хранит занятия. Update выполняет проверку версии
// и возвращает model.ErrConcurrencyConflict при расхождении.
type SessionStore interface {
	Create(ctx context.Context, s *model.TutoringSession) error
	GetByID(ctx context.Context, id int64) (*model.TutoringSession, error)
	GetByTutorInRange(ctx context.Context, tutorID int64, from, to time.Time, statuses []model.SessionStatus) ([]*model.TutoringSession, error)
	GetByParticipant(ctx context.Context, userID int64, statuses []model.SessionStatus) ([]*model.TutoringSession, error)
	GetRequestedBefore(ctx context.Context, before time.Time) ([]*model.TutoringSession, error)
	Update(ctx context.Context, s *model.TutoringSession) error
}

// Transactor выполняет fn атомарно и эксклюзивно в рамках одного учителя
type Transactor interface {
	WithTutorLock(ctx context.Context, tutorID int64, fn func(ctx context.Context) error) error
}

// Notifier доставляет события участникам. Ошибки доставки не возвращаются.
type Notifier interface {
	Notify(ctx context.Context, event model.SessionEvent)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.SessionEvent) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
