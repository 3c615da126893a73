package model

import (
	"time"

	"github.com/google/uuid"
)

// MinutesPerDay верхняя граница для EndMinute
const MinutesPerDay = 24 * 60

// TimeSlot представляет регулярное еженедельное окно доступности учителя
type TimeSlot struct {
	ID                int64        `json:"id"`
	GroupID           uuid.UUID    `json:"group_id"` // слоты, созданные одной операцией
	TutorID           int64        `json:"tutor_id"`
	DayOfWeek         time.Weekday `json:"day_of_week"`  // 0 = Sunday, 6 = Saturday
	StartMinute       int          `json:"start_minute"` // минуты от полуночи
	EndMinute         int          `json:"end_minute"`
	RecurrenceEndDate *time.Time   `json:"recurrence_end_date,omitempty"` // включительно; nil = бессрочно
	IsAvailable       bool         `json:"is_available"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// Validate проверяет инварианты слота
func (s *TimeSlot) Validate() error {
	if s.DayOfWeek < time.Sunday || s.DayOfWeek > time.Saturday {
		return ValidationErrorf("day of week %d is out of range", s.DayOfWeek)
	}
	if s.StartMinute < 0 || s.EndMinute > MinutesPerDay {
		return ValidationErrorf("time of day must be within 00:00-24:00")
	}
	if s.StartMinute >= s.EndMinute {
		return ValidationErrorf("start time must be before end time")
	}
	return nil
}

// AppliesOn проверяет, действует ли шаблон в указанную дату.
// RecurrenceEndDate сравнивается как календарный день без перевода в зону date:
// Postgres отдаёт DATE полуночью UTC, и перевод сдвинул бы день западнее UTC.
func (s *TimeSlot) AppliesOn(date time.Time) bool {
	if date.Weekday() != s.DayOfWeek {
		return false
	}
	if s.RecurrenceEndDate == nil {
		return true
	}
	y1, m1, d1 := date.Date()
	y2, m2, d2 := s.RecurrenceEndDate.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 <= d2
}
