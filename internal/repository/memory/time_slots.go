package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

type timeSlotRecord struct {
	model.TimeSlot
}

func (r *timeSlotRecord) copy() *model.TimeSlot {
	slot := r.TimeSlot
	if r.RecurrenceEndDate != nil {
		end := *r.RecurrenceEndDate
		slot.RecurrenceEndDate = &end
	}
	return &slot
}

type TimeSlotRepository struct {
	store *Store
}

func (r *TimeSlotRepository) Create(_ context.Context, slot *model.TimeSlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	slot.ID = r.store.id()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	rec := &timeSlotRecord{TimeSlot: *slot}
	r.store.timeSlots[slot.ID] = &timeSlotRecord{TimeSlot: *rec.copy()} // не делим указатель на дату с вызывающим
	return nil
}

func (r *TimeSlotRepository) GetByID(_ context.Context, id int64) (*model.TimeSlot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.timeSlots[id]
	if !ok {
		return nil, nil
	}
	return rec.copy(), nil
}

func (r *TimeSlotRepository) GetByTutorID(_ context.Context, tutorID int64) ([]*model.TimeSlot, error) {
	return r.filter(func(s *timeSlotRecord) bool { return s.TutorID == tutorID }), nil
}

func (r *TimeSlotRepository) GetByGroupID(_ context.Context, groupID uuid.UUID) ([]*model.TimeSlot, error) {
	return r.filter(func(s *timeSlotRecord) bool { return s.GroupID == groupID }), nil
}

func (r *TimeSlotRepository) Update(_ context.Context, slot *model.TimeSlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.timeSlots[slot.ID]
	if !ok {
		return fmt.Errorf("update time slot: %w", model.ErrNotFound)
	}
	rec.IsAvailable = slot.IsAvailable
	rec.RecurrenceEndDate = nil
	if slot.RecurrenceEndDate != nil {
		end := *slot.RecurrenceEndDate
		rec.RecurrenceEndDate = &end
	}
	rec.UpdatedAt = r.store.now()
	slot.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *TimeSlotRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.timeSlots[id]; !ok {
		return fmt.Errorf("delete time slot: %w", model.ErrNotFound)
	}
	delete(r.store.timeSlots, id)
	return nil
}

func (r *TimeSlotRepository) filter(keep func(*timeSlotRecord) bool) []*model.TimeSlot {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var slots []*model.TimeSlot
	for _, rec := range r.store.timeSlots {
		if keep(rec) {
			slots = append(slots, rec.copy())
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].StartMinute < slots[j].StartMinute
	})
	return slots
}
