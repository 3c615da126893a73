package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/tutoring_scheduler/internal/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// MessageSender часть *bot.Bot, нужная для отправки сообщений
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TelegramSink пишет участникам занятия в личные сообщения
type TelegramSink struct {
	sender   MessageSender
	users    userLookup
	location *time.Location
}

func NewTelegramSink(sender MessageSender, users userLookup, location *time.Location) *TelegramSink {
	return &TelegramSink{sender: sender, users: users, location: location}
}

func (s *TelegramSink) Name() string {
	return "telegram"
}

func (s *TelegramSink) Send(ctx context.Context, event model.SessionEvent) error {
	text := formatting.FormatEvent(event, s.location)

	var errs []error
	for _, userID := range event.Recipients() {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("get user %d: %w", userID, err))
			continue
		}
		// Пользователь без Telegram (например, из HTTP API)
		if user == nil || user.TelegramID == 0 {
			continue
		}

		_, err = s.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: user.TelegramID,
			Text:   text,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("send message to user %d: %w", userID, err))
		}
	}

	return errors.Join(errs...)
}
