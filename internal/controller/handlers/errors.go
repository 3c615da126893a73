package handlers

import (
	"errors"
	"strings"

	"github.com/Freeeeeet/tutoring_scheduler/internal/formatting"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// ErrorMessage возвращает пользовательское сообщение для ошибки сервиса.
// Для неизвестных ошибок второй результат false: их нужно залогировать.
func ErrorMessage(err error) (string, bool) {
	var transition *model.TransitionError

	switch {
	case errors.Is(err, model.ErrValidation):
		return "❌ Неверные данные: " + detail(err, model.ErrValidation), true
	case errors.Is(err, model.ErrNotFound):
		return "❌ Не найдено: " + detail(err, model.ErrNotFound), true
	case errors.Is(err, model.ErrUnauthorizedAction):
		return "⛔ У вас нет прав на это действие", true
	case errors.Is(err, model.ErrSlotUnavailable):
		return "😔 Это время уже недоступно. Посмотрите свободные окна через /free", true
	case errors.As(err, &transition):
		return "❌ Нельзя перевести занятие из статуса «" + statusText(transition.From) +
			"» в «" + statusText(transition.To) + "»", true
	case errors.Is(err, model.ErrInvalidTransition):
		return "❌ Недопустимая смена статуса", true
	case errors.Is(err, model.ErrConcurrencyConflict):
		return "🔁 Занятие только что изменилось. Повторите команду", true
	default:
		return "❌ Произошла ошибка. Попробуйте позже.", false
	}
}

// detail отрезает префикс доменной ошибки: "validation failed: x" -> "x"
func detail(err, sentinel error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}

func statusText(s model.SessionStatus) string {
	return formatting.GetStatusDisplay(s).Text
}
