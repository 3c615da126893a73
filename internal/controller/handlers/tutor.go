package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/tutoring_scheduler/internal/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// HandleAddCourse обрабатывает /addcourse <минуты> <название> [| описание]
func (h *Handlers) HandleAddCourse(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	args, err := parseCourseArgs(update.Message.Text)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	course, err := h.courseService.CreateCourse(ctx, user.ID, args.Name, args.Description, args.Duration)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
		"✅ Курс создан!\n\n📚 #%d %s\n⏱ %s",
		course.ID, course.Name, formatting.FormatDuration(course.Duration)))
}

// HandleAddSlot обрабатывает /addslot пн,ср 10:00 12:00 [31.12.2026]
func (h *Handlers) HandleAddSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	args, err := parseSlotArgs(commandArgs(update.Message.Text), h.location)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	slots, err := h.timeSlotService.CreateTimeSlotGroup(ctx, user.ID, args.Days, args.StartMinute, args.EndMinute, args.RecurrenceEnd)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ Окна доступности добавлены:\n\n")
	for _, slot := range slots {
		sb.WriteString(formatting.FormatTimeSlot(slot) + "\n")
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

// HandleSlots показывает окна доступности: свои или учителя из аргумента
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	tutorID := user.ID
	if args := commandArgs(update.Message.Text); len(args) > 0 {
		id, err := parseID(args[0], "tutor id")
		if err != nil {
			h.replyError(ctx, b, update, err)
			return
		}
		tutorID = id
	}

	slots, err := h.timeSlotService.ListTimeSlots(ctx, tutorID)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	if len(slots) == 0 {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "📭 Окон доступности пока нет.\n\nДобавить: /addslot пн,ср 10:00 12:00")
		return
	}

	var sb strings.Builder
	sb.WriteString("🗓 Окна доступности:\n\n")
	for _, slot := range slots {
		sb.WriteString(formatting.FormatTimeSlot(slot) + "\n")
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, strings.TrimRight(sb.String(), "\n"))
}

// HandlePauseSlot обрабатывает /pauseslot <окно>
func (h *Handlers) HandlePauseSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setSlotAvailability(ctx, b, update, false)
}

// HandleResumeSlot обрабатывает /resumeslot <окно>
func (h *Handlers) HandleResumeSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.setSlotAvailability(ctx, b, update, true)
}

func (h *Handlers) setSlotAvailability(ctx context.Context, b *bot.Bot, update *models.Update, available bool) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	slotID, ok := h.singleID(ctx, b, update, "slot id")
	if !ok {
		return
	}

	slot, err := h.timeSlotService.SetTimeSlotAvailability(ctx, user.ID, slotID, available)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ "+formatting.FormatTimeSlot(slot))
}

// HandleSlotEnd обрабатывает /slotend <окно> <дата|->
func (h *Handlers) HandleSlotEnd(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.replyError(ctx, b, update, model.ValidationErrorf("usage: /slotend <окно> <дата|->"))
		return
	}

	slotID, err := parseID(args[0], "slot id")
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	var date *time.Time
	if args[1] != "-" {
		d, err := formatting.ParseDate(args[1], h.location)
		if err != nil {
			h.replyError(ctx, b, update, err)
			return
		}
		date = &d
	}

	slot, err := h.timeSlotService.SetRecurrenceEndDate(ctx, user.ID, slotID, date)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ "+formatting.FormatTimeSlot(slot))
}

// HandleDeleteSlot обрабатывает /deleteslot <окно>
func (h *Handlers) HandleDeleteSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireTutor(ctx, b, update)
	if !ok {
		return
	}

	slotID, ok := h.singleID(ctx, b, update, "slot id")
	if !ok {
		return
	}

	if err := h.timeSlotService.DeleteTimeSlot(ctx, user.ID, slotID); err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf("🗑 Окно #%d удалено. Записанные занятия остаются в силе.", slotID))
}

// singleID разбирает команду с единственным аргументом-идентификатором
func (h *Handlers) singleID(ctx context.Context, b *bot.Bot, update *models.Update, what string) (int64, bool) {
	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		h.replyError(ctx, b, update, model.ValidationErrorf("%s is required", what))
		return 0, false
	}

	id, err := parseID(args[0], what)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return 0, false
	}
	return id, true
}
