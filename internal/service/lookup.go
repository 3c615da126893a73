package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// requireTutor возвращает пользователя, если он существует и является учителем
func requireTutor(ctx context.Context, users UserDirectory, tutorID int64) (*model.User, error) {
	user, err := users.GetByID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if user == nil || !user.IsTutor {
		return nil, model.NotFoundErrorf("tutor %d", tutorID)
	}
	return user, nil
}

// requireUser возвращает существующего пользователя
func requireUser(ctx context.Context, users UserDirectory, userID int64) (*model.User, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.NotFoundErrorf("user %d", userID)
	}
	return user, nil
}

// requireCourse проверяет, что курс существует, активен и его ведёт tutorID
func requireCourse(ctx context.Context, courses CourseCatalog, courseID, tutorID int64) (*model.Course, error) {
	course, err := courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, model.NotFoundErrorf("course %d", courseID)
	}
	if course.TutorID != tutorID {
		return nil, model.ValidationErrorf("course %d is not taught by tutor %d", courseID, tutorID)
	}
	if !course.IsActive {
		return nil, model.ValidationErrorf("course %d is not active", courseID)
	}
	return course, nil
}

func loadSession(ctx context.Context, sessions SessionStore, sessionID int64) (*model.TutoringSession, error) {
	s, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s == nil {
		return nil, model.NotFoundErrorf("session %d", sessionID)
	}
	return s, nil
}

// requireTutorActor как requireTutor, но для действующего пользователя:
// не-учитель получает отказ в доступе, а не "не найдено"
func requireTutorActor(ctx context.Context, users UserDirectory, actorID int64) (*model.User, error) {
	user, err := requireUser(ctx, users, actorID)
	if err != nil {
		return nil, err
	}
	if !user.IsTutor {
		return nil, model.UnauthorizedErrorf("user %d is not a tutor", actorID)
	}
	return user, nil
}
