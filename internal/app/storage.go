package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/config"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

// Storage хранилища, выбранные по STORAGE_DRIVER
type Storage struct {
	Users     service.UserStore
	Courses   service.CourseStore
	TimeSlots service.TimeSlotStore
	Sessions  service.SessionStore
	Tx        service.Transactor

	close func()
}

// OpenStorage открывает Postgres с миграциями или хранилище в памяти
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &Storage{
			Users:     store.Users(),
			Courses:   store.Courses(),
			TimeSlots: store.TimeSlots(),
			Sessions:  store.Sessions(),
			Tx:        store,
			close:     func() {},
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Connected to PostgreSQL")

	return &Storage{
		Users:     repository.NewUserRepository(pool),
		Courses:   repository.NewCourseRepository(pool, logger),
		TimeSlots: repository.NewTimeSlotRepository(pool, logger),
		Sessions:  repository.NewSessionRepository(pool),
		Tx:        repository.NewTxManager(pool, logger),
		close:     pool.Close,
	}, nil
}

func (s *Storage) Close() {
	s.close()
}
