package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

func TestErrorMessage(t *testing.T) {
	msg, known := ErrorMessage(model.ValidationErrorf("duration must be positive"))
	assert.True(t, known)
	assert.Equal(t, "❌ Неверные данные: duration must be positive", msg)

	msg, known = ErrorMessage(fmt.Errorf("book: %w", model.ErrSlotUnavailable))
	assert.True(t, known)
	assert.Contains(t, msg, "/free")

	msg, known = ErrorMessage(&model.TransitionError{From: model.SessionStatusCompleted, To: model.SessionStatusScheduled})
	assert.True(t, known)
	assert.Equal(t, "❌ Нельзя перевести занятие из статуса «Завершено» в «Подтверждено»", msg)

	_, known = ErrorMessage(model.UnauthorizedErrorf("not your session"))
	assert.True(t, known)

	_, known = ErrorMessage(model.ErrConcurrencyConflict)
	assert.True(t, known)

	_, known = ErrorMessage(errors.New("connection refused"))
	assert.False(t, known)
}
