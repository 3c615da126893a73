package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

type CourseService struct {
	courses CourseStore
	users   UserDirectory
	logger  *zap.Logger
}

func NewCourseService(courses CourseStore, users UserDirectory, logger *zap.Logger) *CourseService {
	return &CourseService{
		courses: courses,
		users:   users,
		logger:  logger,
	}
}

// CreateCourse создаёт курс учителя
func (s *CourseService) CreateCourse(ctx context.Context, tutorID int64, name, description string, duration int) (*model.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ValidationErrorf("course name is required")
	}
	if duration <= 0 {
		return nil, model.ValidationErrorf("course duration must be positive, got %d", duration)
	}

	if _, err := requireTutorActor(ctx, s.users, tutorID); err != nil {
		return nil, err
	}

	course := &model.Course{
		TutorID:     tutorID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Duration:    duration,
		IsActive:    true,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.logger.Info("Course created",
		zap.Int64("course_id", course.ID),
		zap.Int64("tutor_id", tutorID),
		zap.String("name", name),
	)

	return course, nil
}

// GetTutorCourses возвращает курсы учителя
func (s *CourseService) GetTutorCourses(ctx context.Context, tutorID int64) ([]*model.Course, error) {
	courses, err := s.courses.GetByTutorID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get courses: %w", err)
	}
	return courses, nil
}

// GetCourse возвращает курс по ID
func (s *CourseService) GetCourse(ctx context.Context, courseID int64) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, model.NotFoundErrorf("course %d", courseID)
	}
	return course, nil
}
