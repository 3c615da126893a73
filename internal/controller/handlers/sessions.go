package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutoring_scheduler/internal/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

// freeSearchDays на сколько дней вперёд /free ищет окна
const freeSearchDays = 7

// HandleCourses обрабатывает /courses <учитель>
func (h *Handlers) HandleCourses(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}

	tutorID, ok := h.singleID(ctx, b, update, "tutor id")
	if !ok {
		return
	}

	courses, err := h.courseService.GetTutorCourses(ctx, tutorID)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	var sb strings.Builder
	for _, c := range courses {
		if !c.IsActive {
			continue
		}
		fmt.Fprintf(&sb, "📚 #%d %s (%s)\n", c.ID, c.Name, formatting.FormatDuration(c.Duration))
		if c.Description != "" {
			sb.WriteString("   " + c.Description + "\n")
		}
	}
	if sb.Len() == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📭 У учителя пока нет курсов")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "Курсы учителя:\n\n"+strings.TrimRight(sb.String(), "\n"))
}

// HandleFree обрабатывает /free <учитель> [дата] [минуты]
func (h *Handlers) HandleFree(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) == 0 || len(args) > 3 {
		h.replyError(ctx, b, update, model.ValidationErrorf("usage: /free <учитель> [дата] [минуты]"))
		return
	}

	tutorID, err := parseID(args[0], "tutor id")
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	now := time.Now().In(h.location)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.location)
	if len(args) > 1 {
		if from, err = formatting.ParseDate(args[1], h.location); err != nil {
			h.replyError(ctx, b, update, err)
			return
		}
	}

	minutes := 60
	if len(args) > 2 {
		if minutes, err = parseMinutes(args[2]); err != nil {
			h.replyError(ctx, b, update, err)
			return
		}
	}

	windows, err := h.finder.FindAvailableSlots(ctx, service.AvailabilityQuery{
		TutorID:         tutorID,
		StudentID:       user.ID,
		From:            from,
		To:              from.AddDate(0, 0, freeSearchDays),
		DurationMinutes: minutes,
	})
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	if len(windows) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "😔 Свободных окон на этой неделе нет")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🟢 Свободно для занятия %s:\n\n", formatting.FormatDuration(minutes))
	for _, w := range windows {
		sb.WriteString(formatting.FormatWindow(w, h.location) + "\n")
	}
	sb.WriteString("\nЗаписаться: /book <курс> <дата> <время>")
	h.sendMessage(ctx, b, update.Message.Chat.ID, sb.String())
}

// HandleBook обрабатывает /book <курс> <дата> <время> [минуты] [вопрос]
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	args, err := parseBookingArgs(update.Message.Text, h.location)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	course, err := h.courseService.GetCourse(ctx, args.CourseID)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	minutes := args.Minutes
	if minutes == 0 {
		minutes = course.Duration
	}

	session, err := h.schedulerService.ScheduleSession(ctx, service.BookingRequest{
		StudentID:       user.ID,
		TutorID:         course.TutorID,
		CourseID:        course.ID,
		Start:           args.Start,
		DurationMinutes: minutes,
		StudentQuestion: args.Question,
	})
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"✅ Заявка отправлена учителю!\n\n"+formatting.FormatSession(session, h.location))
}

// HandleMySessions показывает активные занятия пользователя
func (h *Handlers) HandleMySessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	sessions, err := h.lifecycle.ListSessions(ctx, user.ID, model.ActiveSessionStatuses)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	if len(sessions) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📭 Активных занятий нет")
		return
	}

	parts := make([]string, 0, len(sessions))
	for _, s := range sessions {
		parts = append(parts, formatting.FormatSession(s, h.location))
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📅 Ваши занятия:\n\n"+strings.Join(parts, "\n\n"))
}

// HandleSession обрабатывает /session <занятие>
func (h *Handlers) HandleSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	sessionID, ok := h.singleID(ctx, b, update, "session id")
	if !ok {
		return
	}

	session, err := h.lifecycle.GetSession(ctx, sessionID, user.ID)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	text := formatting.FormatSession(session, h.location)
	if next := service.NextStatuses(session, user.ID); len(next) > 0 {
		names := make([]string, 0, len(next))
		for _, st := range next {
			names = append(names, formatting.GetStatusDisplay(st).Text)
		}
		text += "\n\nДоступно: " + strings.Join(names, ", ")
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

// HandleAccept обрабатывает /accept <занятие>
func (h *Handlers) HandleAccept(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.changeStatus(ctx, b, update, model.SessionStatusScheduled)
}

// HandleBegin обрабатывает /begin <занятие>
func (h *Handlers) HandleBegin(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.changeStatus(ctx, b, update, model.SessionStatusInProgress)
}

// HandleNoShow обрабатывает /noshow <занятие>
func (h *Handlers) HandleNoShow(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.changeStatus(ctx, b, update, model.SessionStatusNoShow)
}

func (h *Handlers) changeStatus(ctx context.Context, b *bot.Bot, update *models.Update, to model.SessionStatus) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	sessionID, ok := h.singleID(ctx, b, update, "session id")
	if !ok {
		return
	}

	session, err := h.lifecycle.UpdateSessionStatus(ctx, sessionID, user.ID, to)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.FormatSession(session, h.location))
}

// HandleComplete обрабатывает /complete <занятие> [итог]. Без итога спрашивает его.
func (h *Handlers) HandleComplete(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.withSessionText(ctx, b, update, state.StateSessionSummary,
		"📋 Напишите итог занятия одним сообщением. /abort - отмена",
		h.completeSession)
}

// HandleCancel обрабатывает /cancel <занятие> [причина]. Без причины спрашивает её.
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.withSessionText(ctx, b, update, state.StateCancelReason,
		"✍️ Напишите причину отмены одним сообщением. /abort - отмена",
		h.cancelSession)
}

// HandleNotes обрабатывает /notes <занятие> [текст]. Без текста спрашивает его.
func (h *Handlers) HandleNotes(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.withSessionText(ctx, b, update, state.StateSessionNotes,
		"📝 Напишите заметки к занятию одним сообщением. /abort - отмена",
		h.addNotes)
}

type sessionTextAction func(ctx context.Context, b *bot.Bot, update *models.Update, userID, sessionID int64, text string)

// withSessionText выполняет действие сразу, если текст передан в команде,
// иначе начинает диалог и ждёт следующее сообщение
func (h *Handlers) withSessionText(ctx context.Context, b *bot.Bot, update *models.Update, dialog state.UserState, prompt string, action sessionTextAction) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	sessionID, ok := h.singleID(ctx, b, update, "session id")
	if !ok {
		return
	}

	if text := commandTail(update.Message.Text, 1); text != "" {
		action(ctx, b, update, user.ID, sessionID, text)
		return
	}

	h.stateManager.Start(update.Message.From.ID, dialog, sessionID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, prompt)
}

func (h *Handlers) cancelSession(ctx context.Context, b *bot.Bot, update *models.Update, userID, sessionID int64, reason string) {
	session, err := h.lifecycle.CancelSession(ctx, sessionID, userID, reason)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.FormatSession(session, h.location))
}

func (h *Handlers) addNotes(ctx context.Context, b *bot.Bot, update *models.Update, userID, sessionID int64, notes string) {
	session, err := h.lifecycle.AddSessionNotes(ctx, sessionID, userID, notes)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.FormatSession(session, h.location))
}

func (h *Handlers) completeSession(ctx context.Context, b *bot.Bot, update *models.Update, userID, sessionID int64, summary string) {
	session, err := h.lifecycle.CompleteSession(ctx, sessionID, userID, summary)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.FormatSession(session, h.location))
}

// HandleReschedule обрабатывает /reschedule <занятие> <дата> <время> [минуты]
func (h *Handlers) HandleReschedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	args, err := parseRescheduleArgs(commandArgs(update.Message.Text), h.location)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	session, err := h.lifecycle.UpdateTutoringSession(ctx, args.SessionID, user.ID, service.SessionChanges{
		ScheduledAt:     &args.Start,
		DurationMinutes: args.Minutes,
	})
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "🔁 Занятие перенесено\n\n"+formatting.FormatSession(session, h.location))
}
