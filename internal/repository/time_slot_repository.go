package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/base"
)

// TimeSlotRepository хранит еженедельные слоты доступности
type TimeSlotRepository struct {
	*base.Repository
	logger *zap.Logger
}

// NewTimeSlotRepository создаёт новый репозиторий
func NewTimeSlotRepository(pool *pgxpool.Pool, logger *zap.Logger) *TimeSlotRepository {
	return &TimeSlotRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

const timeSlotColumns = `id, group_id, tutor_id, day_of_week, start_minute, end_minute, recurrence_end_date, is_available, created_at, updated_at`

// Create создаёт новый слот
func (r *TimeSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		INSERT INTO time_slots (group_id, tutor_id, day_of_week, start_minute, end_minute, recurrence_end_date, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx,
		query,
		slot.GroupID,
		slot.TutorID,
		int(slot.DayOfWeek),
		slot.StartMinute,
		slot.EndMinute,
		slot.RecurrenceEndDate,
		slot.IsAvailable,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *TimeSlotRepository) GetByID(ctx context.Context, id int64) (*model.TimeSlot, error) {
	query := `SELECT ` + timeSlotColumns + ` FROM time_slots WHERE id = $1`

	slot, err := scanTimeSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get time slot by id: %w", err)
	}

	return slot, nil
}

// GetByTutorID получает все слоты учителя
func (r *TimeSlotRepository) GetByTutorID(ctx context.Context, tutorID int64) ([]*model.TimeSlot, error) {
	query := `
		SELECT ` + timeSlotColumns + `
		FROM time_slots
		WHERE tutor_id = $1
		ORDER BY day_of_week, start_minute
	`

	return r.list(ctx, "get time slots by tutor", query, tutorID)
}

// GetByGroupID получает все слоты группы
func (r *TimeSlotRepository) GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]*model.TimeSlot, error) {
	query := `
		SELECT ` + timeSlotColumns + `
		FROM time_slots
		WHERE group_id = $1
		ORDER BY day_of_week, start_minute
	`

	return r.list(ctx, "get time slots by group_id", query, groupID)
}

// Update обновляет доступность и дату окончания повторений
func (r *TimeSlotRepository) Update(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		UPDATE time_slots
		SET is_available = $2, recurrence_end_date = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, slot.ID, slot.IsAvailable, slot.RecurrenceEndDate).Scan(&slot.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("update time slot: %w", model.ErrNotFound)
		}
		return fmt.Errorf("update time slot: %w", err)
	}

	return nil
}

// Delete удаляет слот
func (r *TimeSlotRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete time slot: %w", model.ErrNotFound)
	}

	r.logger.Debug("Time slot row deleted", zap.Int64("time_slot_id", id))
	return nil
}

func (r *TimeSlotRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.TimeSlot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*model.TimeSlot
	for rows.Next() {
		slot, err := scanTimeSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

func scanTimeSlot(row interface{ Scan(dest ...any) error }) (*model.TimeSlot, error) {
	var (
		slot    model.TimeSlot
		weekday int
		endDate *time.Time
	)
	err := row.Scan(
		&slot.ID,
		&slot.GroupID,
		&slot.TutorID,
		&weekday,
		&slot.StartMinute,
		&slot.EndMinute,
		&endDate,
		&slot.IsAvailable,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.DayOfWeek = time.Weekday(weekday)
	slot.RecurrenceEndDate = endDate
	return &slot, nil
}
