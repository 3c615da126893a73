package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// actor инициатор изменения: пользователь или фоновая задача.
// Системный актор задаётся только флагом, никакой id пользователя им не является.
type actor struct {
	userID int64
	system bool
}

var systemActor = actor{system: true}

func userActor(id int64) actor {
	return actor{userID: id}
}

// eventActorID id инициатора для событий; 0 у системы
func (a actor) eventActorID() int64 {
	if a.system {
		return 0
	}
	return a.userID
}

func (a actor) field() zap.Field {
	if a.system {
		return zap.String("actor", "system")
	}
	return zap.Int64("actor_id", a.userID)
}

type actorRole uint8

const (
	roleStudent actorRole = 1 << iota
	roleTutor
	roleSystem
)

type edge struct {
	from model.SessionStatus
	to   model.SessionStatus
}

// transitions единственная таблица допустимых переходов статуса
var transitions = map[edge]actorRole{
	{model.SessionStatusRequested, model.SessionStatusScheduled}:  roleTutor,
	{model.SessionStatusRequested, model.SessionStatusCancelled}:  roleStudent | roleTutor | roleSystem,
	{model.SessionStatusScheduled, model.SessionStatusInProgress}: roleTutor,
	{model.SessionStatusScheduled, model.SessionStatusCancelled}:  roleStudent | roleTutor,
	{model.SessionStatusInProgress, model.SessionStatusCompleted}: roleTutor,
	{model.SessionStatusInProgress, model.SessionStatusNoShow}:    roleTutor,
}

// CanTransition сообщает, есть ли переход from -> to в таблице
func CanTransition(from, to model.SessionStatus) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// NextStatuses возвращает статусы, в которые пользователь может перевести занятие
func NextStatuses(s *model.TutoringSession, userID int64) []model.SessionStatus {
	return nextStatuses(s, userActor(userID))
}

func nextStatuses(s *model.TutoringSession, a actor) []model.SessionStatus {
	role := roleOf(s, a)
	var next []model.SessionStatus
	for _, to := range model.AllSessionStatuses {
		if allowed, ok := transitions[edge{s.Status, to}]; ok && allowed&role != 0 {
			next = append(next, to)
		}
	}
	return next
}

func roleOf(s *model.TutoringSession, a actor) actorRole {
	if a.system {
		return roleSystem
	}
	if a.userID <= 0 {
		return 0
	}
	switch a.userID {
	case s.TutorID:
		return roleTutor
	case s.StudentID:
		return roleStudent
	}
	return 0
}

// checkParticipant пропускает участников занятия и системного актора
func checkParticipant(s *model.TutoringSession, a actor) error {
	if roleOf(s, a) == 0 {
		return model.UnauthorizedErrorf("user %d is not a participant of session %d", a.userID, s.ID)
	}
	return nil
}

// checkTransition проверяет ребро, роль и условие перехода.
// Вызывается после checkParticipant.
func checkTransition(s *model.TutoringSession, a actor, to model.SessionStatus, now time.Time) error {
	allowed, ok := transitions[edge{s.Status, to}]
	if !ok {
		return &model.TransitionError{From: s.Status, To: to}
	}

	if allowed&roleOf(s, a) == 0 {
		return model.UnauthorizedErrorf("user %d cannot move session %d from %s to %s", a.userID, s.ID, s.Status, to)
	}

	if to == model.SessionStatusInProgress && now.Before(s.ScheduledAt) {
		return &model.TransitionError{From: s.Status, To: to, Reason: "session has not started yet"}
	}

	return nil
}
