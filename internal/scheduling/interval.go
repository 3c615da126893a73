package scheduling

import (
	"sort"
	"time"
)

// Interval полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, d time.Duration) Interval {
	return Interval{Start: start, End: start.Add(d)}
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}

// Overlaps: s1 < e2 && s2 < e1
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Contains проверяет, что o целиком лежит внутри i
func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Clip обрезает интервал по границам bounds; результат может быть пустым
func (i Interval) Clip(bounds Interval) Interval {
	out := i
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	return out
}

// Subtract вычитает b из i: ноль, один или два остатка
func (i Interval) Subtract(b Interval) []Interval {
	if !i.Overlaps(b) {
		return []Interval{i}
	}
	var out []Interval
	if i.Start.Before(b.Start) {
		out = append(out, Interval{Start: i.Start, End: b.Start})
	}
	if b.End.Before(i.End) {
		out = append(out, Interval{Start: b.End, End: i.End})
	}
	return out
}

// SortIntervals сортирует по началу, затем по концу
func SortIntervals(list []Interval) {
	sort.Slice(list, func(a, b int) bool {
		if list[a].Start.Equal(list[b].Start) {
			return list[a].End.Before(list[b].End)
		}
		return list[a].Start.Before(list[b].Start)
	})
}

// SubtractAll вычитает из окна все занятые интервалы
func SubtractAll(window Interval, busy []Interval) []Interval {
	free := []Interval{window}
	for _, b := range busy {
		var next []Interval
		for _, f := range free {
			next = append(next, f.Subtract(b)...)
		}
		free = next
		if len(free) == 0 {
			break
		}
	}
	return free
}
