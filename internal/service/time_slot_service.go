package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/scheduling"
)

// TimeSlotService управляет еженедельной доступностью учителя
type TimeSlotService struct {
	slots    TimeSlotStore
	users    UserDirectory
	tx       Transactor
	location *time.Location
	clock    scheduling.Clock
	logger   *zap.Logger
}

func NewTimeSlotService(
	slots TimeSlotStore,
	users UserDirectory,
	tx Transactor,
	location *time.Location,
	clock scheduling.Clock,
	logger *zap.Logger,
) *TimeSlotService {
	if location == nil {
		location = time.UTC
	}
	return &TimeSlotService{
		slots:    slots,
		users:    users,
		tx:       tx,
		location: location,
		clock:    clock,
		logger:   logger,
	}
}

// CreateTimeSlot создаёт один еженедельный слот
func (s *TimeSlotService) CreateTimeSlot(ctx context.Context, tutorID int64, day time.Weekday, startMinute, endMinute int, recurrenceEnd *time.Time) (*model.TimeSlot, error) {
	slots, err := s.CreateTimeSlotGroup(ctx, tutorID, []time.Weekday{day}, startMinute, endMinute, recurrenceEnd)
	if err != nil {
		return nil, err
	}
	return slots[0], nil
}

// CreateTimeSlotGroup создаёт одинаковые слоты на несколько дней недели.
// Слоты получают общий GroupID.
func (s *TimeSlotService) CreateTimeSlotGroup(ctx context.Context, tutorID int64, days []time.Weekday, startMinute, endMinute int, recurrenceEnd *time.Time) ([]*model.TimeSlot, error) {
	if len(days) == 0 {
		return nil, model.ValidationErrorf("at least one day of week is required")
	}

	var endDate *time.Time
	if recurrenceEnd != nil {
		d := s.dateOf(*recurrenceEnd)
		if d.Before(s.dateOf(s.clock.Now())) {
			return nil, model.ValidationErrorf("recurrence end date %s is in the past", d.Format(dateLayout))
		}
		endDate = &d
	}

	groupID := uuid.New()
	seen := make(map[time.Weekday]bool, len(days))
	var slots []*model.TimeSlot
	for _, day := range days {
		if seen[day] {
			continue
		}
		seen[day] = true

		slot := &model.TimeSlot{
			GroupID:           groupID,
			TutorID:           tutorID,
			DayOfWeek:         day,
			StartMinute:       startMinute,
			EndMinute:         endMinute,
			RecurrenceEndDate: endDate,
			IsAvailable:       true,
		}
		if err := slot.Validate(); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].DayOfWeek < slots[j].DayOfWeek })

	if _, err := requireTutorActor(ctx, s.users, tutorID); err != nil {
		return nil, err
	}

	err := s.tx.WithTutorLock(ctx, tutorID, func(ctx context.Context) error {
		for _, slot := range slots {
			if err := s.slots.Create(ctx, slot); err != nil {
				return fmt.Errorf("create time slot: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Time slots created",
		zap.Int64("tutor_id", tutorID),
		zap.String("group_id", groupID.String()),
		zap.Int("count", len(slots)),
		zap.Int("start_minute", startMinute),
		zap.Int("end_minute", endMinute),
	)

	return slots, nil
}

// ListTimeSlots возвращает все слоты учителя
func (s *TimeSlotService) ListTimeSlots(ctx context.Context, tutorID int64) ([]*model.TimeSlot, error) {
	if _, err := requireTutor(ctx, s.users, tutorID); err != nil {
		return nil, err
	}

	slots, err := s.slots.GetByTutorID(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get time slots: %w", err)
	}
	return slots, nil
}

// DeleteTimeSlot удаляет слот. Уже созданные занятия не затрагиваются.
func (s *TimeSlotService) DeleteTimeSlot(ctx context.Context, tutorID, slotID int64) error {
	return s.tx.WithTutorLock(ctx, tutorID, func(ctx context.Context) error {
		if _, err := s.ownedSlot(ctx, tutorID, slotID); err != nil {
			return err
		}

		if err := s.slots.Delete(ctx, slotID); err != nil {
			return fmt.Errorf("delete time slot: %w", err)
		}

		s.logger.Info("Time slot deleted",
			zap.Int64("tutor_id", tutorID),
			zap.Int64("slot_id", slotID),
		)
		return nil
	})
}

// SetTimeSlotAvailability включает или приостанавливает слот
func (s *TimeSlotService) SetTimeSlotAvailability(ctx context.Context, tutorID, slotID int64, isAvailable bool) (*model.TimeSlot, error) {
	return s.updateSlot(ctx, tutorID, slotID, func(slot *model.TimeSlot) {
		slot.IsAvailable = isAvailable
	})
}

// SetRecurrenceEndDate меняет дату окончания повторений; nil снимает ограничение
func (s *TimeSlotService) SetRecurrenceEndDate(ctx context.Context, tutorID, slotID int64, date *time.Time) (*model.TimeSlot, error) {
	var endDate *time.Time
	if date != nil {
		d := s.dateOf(*date)
		endDate = &d
	}

	return s.updateSlot(ctx, tutorID, slotID, func(slot *model.TimeSlot) {
		slot.RecurrenceEndDate = endDate
	})
}

func (s *TimeSlotService) updateSlot(ctx context.Context, tutorID, slotID int64, apply func(*model.TimeSlot)) (*model.TimeSlot, error) {
	var slot *model.TimeSlot
	err := s.tx.WithTutorLock(ctx, tutorID, func(ctx context.Context) error {
		var err error
		slot, err = s.ownedSlot(ctx, tutorID, slotID)
		if err != nil {
			return err
		}

		apply(slot)
		if err := s.slots.Update(ctx, slot); err != nil {
			return fmt.Errorf("update time slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Time slot updated",
		zap.Int64("tutor_id", tutorID),
		zap.Int64("slot_id", slotID),
		zap.Bool("is_available", slot.IsAvailable),
	)

	return slot, nil
}

// ownedSlot загружает слот и проверяет владельца
func (s *TimeSlotService) ownedSlot(ctx context.Context, tutorID, slotID int64) (*model.TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get time slot: %w", err)
	}
	if slot == nil {
		return nil, model.NotFoundErrorf("time slot %d", slotID)
	}
	if slot.TutorID != tutorID {
		return nil, model.UnauthorizedErrorf("time slot %d belongs to another tutor", slotID)
	}
	return slot, nil
}

// dateOf возвращает полночь календарного дня t в канонической зоне
func (s *TimeSlotService) dateOf(t time.Time) time.Time {
	y, m, d := t.In(s.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location)
}

const dateLayout = "2006-01-02"
