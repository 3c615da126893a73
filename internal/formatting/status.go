package formatting

import "github.com/Freeeeeet/tutoring_scheduler/internal/model"

// StatusDisplay представляет отображение статуса занятия
type StatusDisplay struct {
	Emoji string
	Text  string
}

var statusDisplays = map[model.SessionStatus]StatusDisplay{
	model.SessionStatusRequested:  {"⏳", "Ожидает подтверждения"},
	model.SessionStatusScheduled:  {"✅", "Подтверждено"},
	model.SessionStatusInProgress: {"▶️", "Идёт"},
	model.SessionStatusCompleted:  {"✔️", "Завершено"},
	model.SessionStatusCancelled:  {"❌", "Отменено"},
	model.SessionStatusNoShow:     {"🚫", "Студент не пришёл"},
}

// GetStatusDisplay возвращает emoji и текст для статуса занятия
func GetStatusDisplay(status model.SessionStatus) StatusDisplay {
	if display, ok := statusDisplays[status]; ok {
		return display
	}
	return StatusDisplay{"❓", "Неизвестно"}
}

// PriorityText возвращает название приоритета
func PriorityText(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return "низкий"
	case model.PriorityHigh:
		return "высокий"
	default:
		return "обычный"
	}
}
