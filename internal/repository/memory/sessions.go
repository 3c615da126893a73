package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

type sessionRecord struct {
	session *model.TutoringSession
}

type SessionRepository struct {
	store *Store
}

func (r *SessionRepository) Create(_ context.Context, s *model.TutoringSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	s.ID = r.store.id()
	s.Version = 1
	s.CreatedAt = now
	s.UpdatedAt = now
	r.store.sessions[s.ID] = &sessionRecord{session: s.Clone()}
	return nil
}

func (r *SessionRepository) GetByID(_ context.Context, id int64) (*model.TutoringSession, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.sessions[id]
	if !ok {
		return nil, nil
	}
	return rec.session.Clone(), nil
}

func (r *SessionRepository) GetByTutorInRange(_ context.Context, tutorID int64, from, to time.Time, statuses []model.SessionStatus) ([]*model.TutoringSession, error) {
	return r.filter(func(s *model.TutoringSession) bool {
		return s.TutorID == tutorID &&
			s.ScheduledAt.Before(to) &&
			s.EndsAt().After(from) &&
			hasStatus(statuses, s.Status)
	}, false), nil
}

func (r *SessionRepository) GetByParticipant(_ context.Context, userID int64, statuses []model.SessionStatus) ([]*model.TutoringSession, error) {
	return r.filter(func(s *model.TutoringSession) bool {
		return s.IsParticipant(userID) && (len(statuses) == 0 || hasStatus(statuses, s.Status))
	}, true), nil
}

func (r *SessionRepository) GetRequestedBefore(_ context.Context, before time.Time) ([]*model.TutoringSession, error) {
	return r.filter(func(s *model.TutoringSession) bool {
		return s.Status == model.SessionStatusRequested && s.ScheduledAt.Before(before)
	}, false), nil
}

// Update сохраняет занятие, если версия совпадает с сохранённой
func (r *SessionRepository) Update(_ context.Context, s *model.TutoringSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.sessions[s.ID]
	if !ok || rec.session.Version != s.Version {
		return fmt.Errorf("update session %d: %w", s.ID, model.ErrConcurrencyConflict)
	}

	s.Version++
	s.UpdatedAt = r.store.now()
	// Поля, которые не меняются после создания
	s.StudentID = rec.session.StudentID
	s.TutorID = rec.session.TutorID
	s.StudentQuestion = rec.session.StudentQuestion
	s.CreatedAt = rec.session.CreatedAt
	rec.session = s.Clone()
	return nil
}

func (r *SessionRepository) filter(keep func(*model.TutoringSession) bool, newestFirst bool) []*model.TutoringSession {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*model.TutoringSession
	for _, rec := range r.store.sessions {
		if keep(rec.session) {
			out = append(out, rec.session.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].ScheduledAt.After(out[j].ScheduledAt)
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out
}

func hasStatus(statuses []model.SessionStatus, st model.SessionStatus) bool {
	for _, s := range statuses {
		if s == st {
			return true
		}
	}
	return false
}
