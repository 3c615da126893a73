package scheduling

import "time"

// FreeOffers вычитает занятые интервалы из каждого окна отдельно и нарезает
// остаток на предложения длиной d подряд от начала свободного куска.
// Предложение никогда не выходит за своё окно. Одинаковые предложения
// из пересекающихся слотов выдаются один раз.
// Предложения, начинающиеся раньше notBefore, отбрасываются.
func FreeOffers(windows, busy []Interval, d time.Duration, notBefore time.Time) []Interval {
	if d <= 0 {
		return nil
	}

	var offers []Interval
	for _, w := range windows {
		for _, free := range SubtractAll(w, busy) {
			if free.Duration() < d {
				continue
			}
			for start := free.Start; !start.Add(d).After(free.End); start = start.Add(d) {
				if start.Before(notBefore) {
					continue
				}
				offers = append(offers, Interval{Start: start, End: start.Add(d)})
			}
		}
	}

	SortIntervals(offers)
	return dedupe(offers)
}

// dedupe убирает подряд идущие одинаковые интервалы отсортированного списка
func dedupe(sorted []Interval) []Interval {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, cur := range sorted[1:] {
		last := out[len(out)-1]
		if cur.Start.Equal(last.Start) && cur.End.Equal(last.End) {
			continue
		}
		out = append(out, cur)
	}
	return out
}
