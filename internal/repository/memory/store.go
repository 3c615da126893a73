// Package memory хранит данные в памяти процесса. Используется в тестах
// и при STORAGE_DRIVER=memory; повторяет контракт pgx-репозиториев.
package memory

import (
	"context"
	"sync"
	"time"
)

// Store общее хранилище; репозитории ниже являются его представлениями
type Store struct {
	mu sync.RWMutex

	users     map[int64]*userRecord
	courses   map[int64]*courseRecord
	timeSlots map[int64]*timeSlotRecord
	sessions  map[int64]*sessionRecord
	nextID    int64

	lockMu     sync.Mutex
	tutorLocks map[int64]*sync.Mutex

	now func() time.Time
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*userRecord),
		courses:    make(map[int64]*courseRecord),
		timeSlots:  make(map[int64]*timeSlotRecord),
		sessions:   make(map[int64]*sessionRecord),
		tutorLocks: make(map[int64]*sync.Mutex),
		now:        time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) tutorLock(tutorID int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	l, ok := s.tutorLocks[tutorID]
	if !ok {
		l = &sync.Mutex{}
		s.tutorLocks[tutorID] = l
	}
	return l
}

// WithTutorLock выполняет fn под эксклюзивной блокировкой учителя.
// Блокировка не затрагивает других учителей.
func (s *Store) WithTutorLock(ctx context.Context, tutorID int64, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l := s.tutorLock(tutorID)
	l.Lock()
	defer l.Unlock()

	return fn(ctx)
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

func (s *Store) Courses() *CourseRepository {
	return &CourseRepository{store: s}
}

func (s *Store) TimeSlots() *TimeSlotRepository {
	return &TimeSlotRepository{store: s}
}

func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{store: s}
}
