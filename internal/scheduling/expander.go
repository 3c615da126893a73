package scheduling

import (
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// Expander разворачивает еженедельные слоты в конкретные окна по датам
type Expander struct {
	location *time.Location
	clock    Clock
}

// NewExpander создаёт экспандер; все даты считаются в location
func NewExpander(location *time.Location, clock Clock) *Expander {
	if location == nil {
		location = time.UTC
	}
	return &Expander{location: location, clock: clock}
}

// Location возвращает каноническую временную зону
func (e *Expander) Location() *time.Location {
	return e.location
}

// Expand возвращает окна доступности для [from, to), по одному на каждое
// повторение слота. Берутся только слоты с IsAvailable; окна обрезаются
// по [from, to), полностью прошедшие отбрасываются. Смежные и
// пересекающиеся окна разных слотов не объединяются: занятие должно
// целиком помещаться в одно повторение одного слота.
func (e *Expander) Expand(slots []*model.TimeSlot, from, to time.Time) []Interval {
	if !from.Before(to) {
		return nil
	}

	bounds := Interval{Start: from, End: to}
	now := e.clock.Now()
	localFrom := from.In(e.location)
	year, month, day := localFrom.Date()

	var windows []Interval
	for _, slot := range slots {
		if !slot.IsAvailable {
			continue
		}

		offset := (int(slot.DayOfWeek) - int(localFrom.Weekday()) + 7) % 7
		for d := day + offset; ; d += 7 {
			date := time.Date(year, month, d, 0, 0, 0, 0, e.location)
			if !date.Before(to) {
				break
			}
			// Даты идут по возрастанию, дальше окончание повторений только ближе
			if !slot.AppliesOn(date) {
				break
			}

			window := Interval{
				Start: time.Date(year, month, d, 0, slot.StartMinute, 0, 0, e.location),
				End:   time.Date(year, month, d, 0, slot.EndMinute, 0, 0, e.location),
			}.Clip(bounds)

			if window.Empty() || !window.End.After(now) {
				continue
			}
			windows = append(windows, window)
		}
	}

	SortIntervals(windows)
	return windows
}

// Covers проверяет, что candidate целиком лежит в одном из окон.
// Окна не склеиваются, поэтому интервал на стыке двух слотов не покрыт.
func Covers(windows []Interval, candidate Interval) bool {
	for _, w := range windows {
		if w.Contains(candidate) {
			return true
		}
	}
	return false
}
