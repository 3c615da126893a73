// Package notify доставляет события занятий участникам. Доставка асинхронная
// и негарантированная: ошибки только логируются.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// Sink один канал доставки
type Sink interface {
	Name() string
	Send(ctx context.Context, event model.SessionEvent) error
}

const (
	defaultBuffer      = 256
	defaultSendTimeout = 10 * time.Second
)

// Dispatcher раздаёт события всем sink'ам из пула воркеров
type Dispatcher struct {
	sinks       []Sink
	queue       chan model.SessionEvent
	workerCount int
	sendTimeout time.Duration
	logger      *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sinks []Sink, workerCount int, logger *zap.Logger) *Dispatcher {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Dispatcher{
		sinks:       sinks,
		queue:       make(chan model.SessionEvent, defaultBuffer),
		workerCount: workerCount,
		sendTimeout: defaultSendTimeout,
		logger:      logger,
	}
}

// Start запускает воркеры
func (d *Dispatcher) Start() {
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	d.logger.Info("Notification dispatcher started",
		zap.Int("workers", d.workerCount),
		zap.Int("sinks", len(d.sinks)),
	)
}

// Notify ставит событие в очередь и не блокируется.
// При переполненной очереди событие отбрасывается.
func (d *Dispatcher) Notify(_ context.Context, event model.SessionEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Dispatcher closed, event dropped", zap.String("event_id", event.ID.String()))
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("Notification queue full, event dropped",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
			zap.Int64("session_id", event.Session.ID),
		)
	}
}

// Close дожидается отправки уже поставленных событий
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Notification dispatcher stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for event := range d.queue {
		d.deliver(event)
	}

	d.logger.Debug("Notification worker stopped", zap.Int("worker", id))
}

func (d *Dispatcher) deliver(event model.SessionEvent) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := sink.Send(ctx, event)
		cancel()

		if err != nil {
			d.logger.Warn("Failed to deliver notification",
				zap.String("sink", sink.Name()),
				zap.String("event_id", event.ID.String()),
				zap.String("type", string(event.Type)),
				zap.Int64("session_id", event.Session.ID),
				zap.Error(err),
			)
		}
	}
}
