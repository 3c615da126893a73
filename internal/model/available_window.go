package model

import "time"

// AvailableWindow конкретный свободный интервал [Start, End), доступный для записи
type AvailableWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DurationMinutes возвращает длину окна в минутах
func (w AvailableWindow) DurationMinutes() int {
	return int(w.End.Sub(w.Start) / time.Minute)
}
