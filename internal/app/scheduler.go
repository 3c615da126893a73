package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RequestExpirer отменяет заявки, время которых уже прошло
type RequestExpirer interface {
	ExpireStaleRequests(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	expirer  RequestExpirer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewScheduler(expirer RequestExpirer, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("request_expiry_interval", s.interval))

	s.wg.Add(1)
	go s.runRequestExpiryTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runRequestExpiryTask периодически отменяет просроченные заявки
func (s *Scheduler) runRequestExpiryTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.expireRequests(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expireRequests(ctx)
		case <-s.stopChan:
			s.logger.Info("Request expiry task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Request expiry task cancelled")
			return
		}
	}
}

func (s *Scheduler) expireRequests(ctx context.Context) {
	expired, err := s.expirer.ExpireStaleRequests(ctx)
	if err != nil {
		s.logger.Error("Failed to expire stale requests", zap.Int("expired", expired), zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("Stale requests expired", zap.Int("expired", expired))
	}
}
