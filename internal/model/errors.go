package model

import (
	"errors"
	"fmt"
)

// Доменные ошибки. Сервисы оборачивают их через fmt.Errorf("%w: ...")
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrSlotUnavailable     = errors.New("slot unavailable")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrUnauthorizedAction  = errors.New("action not allowed for this user")
	ErrConcurrencyConflict = errors.New("record was modified concurrently")

	// ErrWriteConflict сообщает о транзиентном конфликте записи в хранилище.
	// Бронирование повторяет попытку, наружу не отдаётся.
	ErrWriteConflict = errors.New("write conflict")
)

func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func UnauthorizedErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorizedAction, fmt.Sprintf(format, args...))
}

// TransitionError описывает отклонённый переход статуса
type TransitionError struct {
	From   SessionStatus
	To     SessionStatus
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
