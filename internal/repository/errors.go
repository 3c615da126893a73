package repository

import (
	"fmt"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/base"
)

// SQLSTATE коды, которые важны для бронирования
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeExclusionViolation   = "23P01"
)

// mapWriteError переводит ошибки Postgres в доменные
func mapWriteError(op string, err error) error {
	switch base.PgErrorCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w: %v", op, model.ErrWriteConflict, err)
	case codeExclusionViolation:
		return fmt.Errorf("%s: %w: overlapping session", op, model.ErrSlotUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
