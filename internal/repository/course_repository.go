package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/base"
)

type CourseRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewCourseRepository(pool *pgxpool.Pool, logger *zap.Logger) *CourseRepository {
	return &CourseRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

const courseColumns = `id, tutor_id, name, description, duration, is_active, created_at`

// Create создаёт новый курс
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	query := `
		INSERT INTO courses (tutor_id, name, description, duration, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		course.TutorID,
		course.Name,
		course.Description,
		course.Duration,
		course.IsActive,
	).Scan(&course.ID, &course.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to create course",
			zap.Int64("tutor_id", course.TutorID),
			zap.String("name", course.Name),
			zap.Error(err))
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return course, nil
}

// GetByTutorID получает все курсы учителя
func (r *CourseRepository) GetByTutorID(ctx context.Context, tutorID int64) ([]*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE tutor_id = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get courses by tutor: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

func scanCourse(row interface{ Scan(dest ...any) error }) (*model.Course, error) {
	var course model.Course
	err := row.Scan(
		&course.ID,
		&course.TutorID,
		&course.Name,
		&course.Description,
		&course.Duration,
		&course.IsActive,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
