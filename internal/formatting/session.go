package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// FormatSession форматирует занятие для сообщения в чат
func FormatSession(s *model.TutoringSession, loc *time.Location) string {
	status := GetStatusDisplay(s.Status)
	start := s.ScheduledAt.In(loc)

	var b strings.Builder
	fmt.Fprintf(&b, "%s Занятие #%d\n", status.Emoji, s.ID)
	fmt.Fprintf(&b, "📅 %s %s, %s\n", WeekdayShortName(start.Weekday()), FormatDate(start), FormatTimeRange(start, s.EndsAt().In(loc)))
	fmt.Fprintf(&b, "Статус: %s\n", status.Text)
	if s.Priority != "" && s.Priority != model.PriorityMedium {
		fmt.Fprintf(&b, "Приоритет: %s\n", PriorityText(s.Priority))
	}
	if s.StudentQuestion != "" {
		fmt.Fprintf(&b, "❓ %s\n", s.StudentQuestion)
	}
	if s.TutorNotes != "" {
		fmt.Fprintf(&b, "📝 %s\n", s.TutorNotes)
	}
	if s.SessionSummary != "" {
		fmt.Fprintf(&b, "📋 %s\n", s.SessionSummary)
	}
	if s.CancellationReason != "" {
		fmt.Fprintf(&b, "Причина отмены: %s\n", s.CancellationReason)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTimeSlot форматирует еженедельный слот одной строкой
func FormatTimeSlot(slot *model.TimeSlot) string {
	line := fmt.Sprintf("#%d %s %s-%s", slot.ID, WeekdayShortName(slot.DayOfWeek),
		FormatMinute(slot.StartMinute), FormatMinute(slot.EndMinute))
	if slot.RecurrenceEndDate != nil {
		line += " до " + FormatDate(*slot.RecurrenceEndDate)
	}
	if !slot.IsAvailable {
		line += " (пауза)"
	}
	return line
}

// FormatWindow форматирует свободное окно
func FormatWindow(w model.AvailableWindow, loc *time.Location) string {
	start := w.Start.In(loc)
	return fmt.Sprintf("%s %s %s", WeekdayShortName(start.Weekday()), FormatDate(start), FormatTimeRange(start, w.End.In(loc)))
}

// FormatEvent текст уведомления о событии занятия
func FormatEvent(e model.SessionEvent, loc *time.Location) string {
	var title string
	switch e.Type {
	case model.EventSessionRequested:
		title = "📥 Новая заявка на занятие"
	case model.EventSessionCancelled:
		title = "❌ Занятие отменено"
	case model.EventSessionRescheduled:
		title = "🔁 Занятие перенесено"
	case model.EventSessionNotes:
		title = "📝 Учитель добавил заметки"
	default:
		title = fmt.Sprintf("🔔 Статус занятия: %s", GetStatusDisplay(e.Session.Status).Text)
	}
	return title + "\n\n" + FormatSession(&e.Session, loc)
}
