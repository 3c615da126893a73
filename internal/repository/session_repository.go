package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/base"
)

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

const sessionColumns = `
	id, student_id, tutor_id, course_id, scheduled_at, duration_minutes, status, priority,
	student_question, tutor_notes, session_summary, cancellation_reason, cancelled_by,
	version, created_at, updated_at`

// Create создаёт новое занятие
func (r *SessionRepository) Create(ctx context.Context, s *model.TutoringSession) error {
	query := `
		INSERT INTO tutoring_sessions (
			student_id, tutor_id, course_id, scheduled_at, ends_at, duration_minutes,
			status, priority, student_question, tutor_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, version, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		s.StudentID,
		s.TutorID,
		s.CourseID,
		s.ScheduledAt,
		s.EndsAt(),
		s.DurationMinutes,
		string(s.Status),
		string(s.Priority),
		s.StudentQuestion,
		s.TutorNotes,
	).Scan(&s.ID, &s.Version, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return mapWriteError("create session", err)
	}

	return nil
}

// GetByID получает занятие по ID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.TutoringSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM tutoring_sessions WHERE id = $1`

	s, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return s, nil
}

// GetByTutorInRange получает занятия учителя, пересекающие [from, to), с указанными статусами
func (r *SessionRepository) GetByTutorInRange(ctx context.Context, tutorID int64, from, to time.Time, statuses []model.SessionStatus) ([]*model.TutoringSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM tutoring_sessions
		WHERE tutor_id = $1
		  AND scheduled_at < $3
		  AND ends_at > $2
		  AND status = ANY($4)
		ORDER BY scheduled_at
	`

	return r.list(ctx, "get sessions by tutor in range", query, tutorID, from, to, statusStrings(statuses))
}

// GetByParticipant получает занятия, где пользователь студент или учитель.
// Пустой statuses означает все статусы.
func (r *SessionRepository) GetByParticipant(ctx context.Context, userID int64, statuses []model.SessionStatus) ([]*model.TutoringSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM tutoring_sessions
		WHERE (student_id = $1 OR tutor_id = $1)
		  AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY scheduled_at DESC
	`

	return r.list(ctx, "get sessions by participant", query, userID, statusStrings(statuses))
}

// GetRequestedBefore получает неподтверждённые занятия, начало которых раньше before
func (r *SessionRepository) GetRequestedBefore(ctx context.Context, before time.Time) ([]*model.TutoringSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM tutoring_sessions
		WHERE status = 'REQUESTED' AND scheduled_at < $1
		ORDER BY scheduled_at
	`

	return r.list(ctx, "get stale requested sessions", query, before)
}

// Update сохраняет изменения с проверкой версии (оптимистическая блокировка)
func (r *SessionRepository) Update(ctx context.Context, s *model.TutoringSession) error {
	query := `
		UPDATE tutoring_sessions
		SET course_id = $3, scheduled_at = $4, ends_at = $5, duration_minutes = $6,
		    status = $7, priority = $8, tutor_notes = $9, session_summary = $10,
		    cancellation_reason = $11, cancelled_by = $12,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		s.ID,
		s.Version,
		s.CourseID,
		s.ScheduledAt,
		s.EndsAt(),
		s.DurationMinutes,
		string(s.Status),
		string(s.Priority),
		s.TutorNotes,
		s.SessionSummary,
		s.CancellationReason,
		s.CancelledBy,
	).Scan(&s.Version, &s.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("update session %d: %w", s.ID, model.ErrConcurrencyConflict)
		}
		return mapWriteError("update session", err)
	}

	return nil
}

func (r *SessionRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.TutoringSession, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []*model.TutoringSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sessions, nil
}

func scanSession(row interface{ Scan(dest ...any) error }) (*model.TutoringSession, error) {
	var (
		s        model.TutoringSession
		status   string
		priority string
	)
	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.TutorID,
		&s.CourseID,
		&s.ScheduledAt,
		&s.DurationMinutes,
		&status,
		&priority,
		&s.StudentQuestion,
		&s.TutorNotes,
		&s.SessionSummary,
		&s.CancellationReason,
		&s.CancelledBy,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = model.SessionStatus(status)
	s.Priority = model.Priority(priority)
	return &s, nil
}

func statusStrings(statuses []model.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}
