package scheduling

import "github.com/Freeeeeet/tutoring_scheduler/internal/model"

// BlockingPolicy определяет, какие статусы занимают время учителя.
// SCHEDULED и IN_PROGRESS блокируют всегда, REQUESTED по настройке.
type BlockingPolicy struct {
	RequestedBlocks bool
}

func DefaultBlockingPolicy() BlockingPolicy {
	return BlockingPolicy{RequestedBlocks: true}
}

func (p BlockingPolicy) Blocks(status model.SessionStatus) bool {
	switch status {
	case model.SessionStatusScheduled, model.SessionStatusInProgress:
		return true
	case model.SessionStatusRequested:
		return p.RequestedBlocks
	}
	return false
}

// BlockingStatuses статусы, которые надо загрузить для проверки конфликтов
func (p BlockingPolicy) BlockingStatuses() []model.SessionStatus {
	statuses := make([]model.SessionStatus, 0, 3)
	for _, st := range model.ActiveSessionStatuses {
		if p.Blocks(st) {
			statuses = append(statuses, st)
		}
	}
	return statuses
}

// ConflictGuard проверяет пересечения кандидата с занятиями учителя
type ConflictGuard struct {
	policy BlockingPolicy
}

func NewConflictGuard(policy BlockingPolicy) *ConflictGuard {
	return &ConflictGuard{policy: policy}
}

func (g *ConflictGuard) Policy() BlockingPolicy {
	return g.policy
}

// Blocks проверяет, блокирует ли занятие своё время
func (g *ConflictGuard) Blocks(s *model.TutoringSession) bool {
	return g.policy.Blocks(s.Status)
}

// SessionInterval интервал занятия
func SessionInterval(s *model.TutoringSession) Interval {
	return Interval{Start: s.ScheduledAt, End: s.EndsAt()}
}

// FirstConflict возвращает первое блокирующее занятие, пересекающее candidate.
// Занятие с excludeID пропускается (перенос самого себя).
func (g *ConflictGuard) FirstConflict(candidate Interval, sessions []*model.TutoringSession, excludeID int64) *model.TutoringSession {
	for _, s := range sessions {
		if excludeID != 0 && s.ID == excludeID {
			continue
		}
		if !g.Blocks(s) {
			continue
		}
		if candidate.Overlaps(SessionInterval(s)) {
			return s
		}
	}
	return nil
}

// BusyIntervals интервалы блокирующих занятий
func (g *ConflictGuard) BusyIntervals(sessions []*model.TutoringSession) []Interval {
	busy := make([]Interval, 0, len(sessions))
	for _, s := range sessions {
		if g.Blocks(s) {
			busy = append(busy, SessionInterval(s))
		}
	}
	return busy
}
