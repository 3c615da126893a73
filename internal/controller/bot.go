package controller

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/tutoring_scheduler/internal/controller/state"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

// Services сервисы, которые обслуживает бот
type Services struct {
	Users     *service.UserService
	Courses   *service.CourseService
	TimeSlots *service.TimeSlotService
	Finder    *service.AvailabilityFinder
	Scheduler *service.SchedulingService
	Lifecycle *service.SessionLifecycleManager
	Tokens    handlers.TokenIssuer
	Location  *time.Location
	DialogTTL time.Duration
}

type command struct {
	name        string
	description string
	handler     bot.HandlerFunc
	inMenu      bool
}

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	commands map[string]command
	menu     []command
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, services Services, logger *zap.Logger) *BotController {
	stateManager := state.NewManager(services.DialogTTL)

	h := handlers.NewHandlers(
		services.Users,
		services.Courses,
		services.TimeSlots,
		services.Finder,
		services.Scheduler,
		services.Lifecycle,
		services.Tokens,
		stateManager,
		services.Location,
		logger,
	)

	c := &BotController{
		bot:      botInstance,
		handlers: h,
		commands: make(map[string]command),
		logger:   logger,
	}

	c.add("start", "🚀 Начать работу с ботом", h.HandleStart, true)
	c.add("help", "❓ Справка по командам", h.HandleHelp, true)
	c.add("abort", "Прервать диалог", h.HandleAbort, false)
	c.add("token", "🔑 Токен для HTTP API", h.HandleToken, false)

	// Студенты
	c.add("courses", "📚 Курсы учителя", h.HandleCourses, true)
	c.add("free", "🟢 Свободные окна учителя", h.HandleFree, true)
	c.add("book", "✍️ Записаться на занятие", h.HandleBook, true)
	c.add("mysessions", "📅 Мои занятия", h.HandleMySessions, true)
	c.add("session", "Подробности занятия", h.HandleSession, false)
	c.add("cancel", "❌ Отменить занятие", h.HandleCancel, true)

	// Учителя
	c.add("becometutor", "🎓 Стать учителем", h.HandleBecomeTutor, true)
	c.add("addcourse", "➕ Создать курс (учитель)", h.HandleAddCourse, true)
	c.add("addslot", "🗓 Добавить окна доступности (учитель)", h.HandleAddSlot, true)
	c.add("slots", "🗓 Окна доступности", h.HandleSlots, true)
	c.add("pauseslot", "Приостановить окно", h.HandlePauseSlot, false)
	c.add("resumeslot", "Возобновить окно", h.HandleResumeSlot, false)
	c.add("slotend", "Дата окончания окна", h.HandleSlotEnd, false)
	c.add("deleteslot", "Удалить окно", h.HandleDeleteSlot, false)
	c.add("accept", "✅ Подтвердить заявку (учитель)", h.HandleAccept, true)
	c.add("begin", "Начать занятие", h.HandleBegin, false)
	c.add("complete", "Завершить занятие", h.HandleComplete, false)
	c.add("noshow", "Студент не пришёл", h.HandleNoShow, false)
	c.add("notes", "Заметки к занятию", h.HandleNotes, false)
	c.add("reschedule", "Перенести занятие", h.HandleReschedule, false)

	return c
}

func (c *BotController) add(name, description string, handler bot.HandlerFunc, inMenu bool) {
	cmd := command{name: name, description: description, handler: handler, inMenu: inMenu}
	c.commands[name] = cmd
	if inMenu {
		c.menu = append(c.menu, cmd)
	}
}

// RegisterHandlers регистрирует обработчик сообщений и меню команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.dispatch)
	return c.setCommands(ctx)
}

// dispatch направляет команду её обработчику, остальной текст продолжает диалог
func (c *BotController) dispatch(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	name, ok := parseCommand(update.Message.Text)
	if !ok {
		c.handlers.HandleTextMessage(ctx, b, update)
		return
	}

	cmd, ok := c.commands[name]
	if !ok {
		c.handlers.HandleHelp(ctx, b, update)
		return
	}

	c.logger.Debug("Bot command",
		zap.String("command", name),
		zap.Int64("chat_id", update.Message.Chat.ID),
	)
	cmd.handler(ctx, b, update)
}

// parseCommand достаёт имя команды: "/book@my_bot 3" -> "book"
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.TrimPrefix(strings.Fields(text)[0], "/")
	name, _, _ = strings.Cut(name, "@")
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := make([]models.BotCommand, 0, len(c.menu))
	for _, cmd := range c.menu {
		commands = append(commands, models.BotCommand{Command: cmd.name, Description: cmd.description})
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set", zap.Int("commands", len(commands)))
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
