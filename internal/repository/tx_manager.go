package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/base"
)

// TxManager выполняет атомарные операции в рамках одного учителя
type TxManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) *TxManager {
	return &TxManager{pool: pool, logger: logger}
}

// WithTutorLock открывает транзакцию, берёт advisory lock по tutorID
// и выполняет fn. Репозитории внутри fn работают в этой транзакции.
// Лок снимается при commit/rollback, другие учителя не блокируются.
func (m *TxManager) WithTutorLock(ctx context.Context, tutorID int64, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, tutorID); err != nil {
		return mapWriteError("acquire tutor lock", err)
	}

	if err := fn(base.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		m.logger.Warn("Commit failed",
			zap.Int64("tutor_id", tutorID),
			zap.Error(err),
		)
		return mapWriteError("commit transaction", err)
	}

	return nil
}
