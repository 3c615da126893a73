package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutoring_scheduler/internal/formatting"
)

const helpText = "📚 Справка по командам:\n\n" +
	"Для студентов:\n" +
	"/courses <учитель> - Курсы учителя\n" +
	"/free <учитель> [дата] [минуты] - Свободные окна на неделю\n" +
	"/book <курс> <дата> <время> [минуты] [вопрос] - Записаться\n" +
	"/mysessions - Мои занятия\n" +
	"/session <занятие> - Подробности занятия\n" +
	"/cancel <занятие> [причина] - Отменить занятие\n\n" +
	"Для учителей:\n" +
	"/becometutor - Стать учителем\n" +
	"/addcourse <минуты> <название> [| описание] - Создать курс\n" +
	"/addslot пн,ср 10:00 12:00 [31.12.2026] - Добавить окна доступности\n" +
	"/slots - Мои окна доступности\n" +
	"/pauseslot, /resumeslot, /deleteslot <окно> - Управление окном\n" +
	"/slotend <окно> <дата|-> - Дата окончания повторения\n" +
	"/accept <занятие> - Подтвердить заявку\n" +
	"/begin <занятие> - Начать занятие\n" +
	"/complete <занятие> - Завершить занятие\n" +
	"/noshow <занятие> - Студент не пришёл\n" +
	"/notes <занятие> [текст] - Заметки к занятию\n" +
	"/reschedule <занятие> <дата> <время> [минуты] - Перенести\n\n" +
	"/token - Токен для HTTP API\n" +
	"/abort - Прервать текущий диалог"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот для записи на занятия к репетиторам. Ваш ID: %d\n\n%s",
		registeredUser.FirstName,
		registeredUser.ID,
		helpText,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleBecomeTutor обрабатывает команду /becometutor
func (h *Handlers) HandleBecomeTutor(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if user.IsTutor {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "Вы уже учитель.\n\nДобавить курс: /addcourse")
		return
	}

	if _, err := h.userService.MakeTutor(ctx, user.ID); err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"🎓 Теперь вы учитель!\n\n"+
			"1. Создайте курс: /addcourse 60 Математика\n"+
			"2. Добавьте окна доступности: /addslot пн,ср 10:00 14:00")
}

// HandleToken выдаёт токен для HTTP API
func (h *Handlers) HandleToken(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	if h.tokens == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ HTTP API отключён")
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, TokenTTL)
	if err != nil {
		h.replyError(ctx, b, update, err)
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("🔑 Токен действует %s:\n\n%s", formatting.FormatDuration(int(TokenTTL.Minutes())), token))
}

// HandleAbort прерывает текущий диалог
func (h *Handlers) HandleAbort(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	if _, ok := h.stateManager.Take(update.Message.From.ID); !ok {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleTextMessage продолжает диалог, начатый командой без текста
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	dialog, ok := h.stateManager.Take(telegramID)
	if !ok {
		h.logger.Debug("No active dialog, ignoring message", zap.Int64("telegram_id", telegramID))
		return
	}

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	text := strings.TrimSpace(update.Message.Text)

	switch dialog.State {
	case state.StateCancelReason:
		h.cancelSession(ctx, b, update, user.ID, dialog.SessionID, text)
	case state.StateSessionNotes:
		h.addNotes(ctx, b, update, user.ID, dialog.SessionID, text)
	case state.StateSessionSummary:
		h.completeSession(ctx, b, update, user.ID, dialog.SessionID, text)
	default:
		h.logger.Warn("Unknown dialog state", zap.String("state", string(dialog.State)))
	}
}
