package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/tutoring_scheduler/internal/api"
	"github.com/Freeeeeet/tutoring_scheduler/internal/app"
	"github.com/Freeeeeet/tutoring_scheduler/internal/config"
	"github.com/Freeeeeet/tutoring_scheduler/internal/controller"
	"github.com/Freeeeeet/tutoring_scheduler/internal/notify"
	"github.com/Freeeeeet/tutoring_scheduler/internal/scheduling"
	"github.com/Freeeeeet/tutoring_scheduler/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Tutoring scheduler stopped with error", zap.Error(err))
	}
	logger.Info("Tutoring scheduler stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting tutoring scheduler",
		zap.String("storage", cfg.StorageDriver),
		zap.Bool("telegram", cfg.TelegramToken != ""),
		zap.Bool("http", cfg.HTTPEnabled),
		zap.String("timezone", cfg.Location.String()),
	)

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	// Бот создаётся до сервисов: он нужен как канал уведомлений
	var botInstance *bot.Bot
	if cfg.TelegramToken != "" {
		botInstance, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}
	}

	sinks := []notify.Sink{notify.NewLogSink(logger)}
	if botInstance != nil {
		sinks = append(sinks, notify.NewTelegramSink(botInstance, storage.Users, cfg.Location))
	}
	if cfg.RedisURL != "" {
		redisClient, err := notify.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		sinks = append(sinks, notify.NewRedisSink(redisClient, notify.DefaultChannel))
	}

	dispatcher := notify.NewDispatcher(sinks, cfg.NotifyWorkers, logger)
	dispatcher.Start()
	defer dispatcher.Close()

	clock := scheduling.SystemClock{Location: cfg.Location}
	expander := scheduling.NewExpander(cfg.Location, clock)
	guard := scheduling.NewConflictGuard(scheduling.BlockingPolicy{RequestedBlocks: cfg.RequestedBlocks})

	userService := service.NewUserService(storage.Users, logger)
	courseService := service.NewCourseService(storage.Courses, storage.Users, logger)
	timeSlotService := service.NewTimeSlotService(storage.TimeSlots, storage.Users, storage.Tx, cfg.Location, clock, logger)
	finder := service.NewAvailabilityFinder(storage.TimeSlots, storage.Sessions, storage.Users, storage.Courses,
		expander, guard, clock, logger)
	schedulingService := service.NewSchedulingService(storage.Users, storage.Courses, storage.TimeSlots, storage.Sessions,
		storage.Tx, expander, guard, dispatcher, clock, cfg.BookingMaxRetries, logger)
	lifecycle := service.NewSessionLifecycleManager(storage.Sessions, storage.TimeSlots, storage.Courses, storage.Tx,
		expander, guard, dispatcher, clock, logger)

	scheduler := app.NewScheduler(lifecycle, cfg.RequestExpiryInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	var jwtAuth *api.JWTAuth
	if cfg.HTTPEnabled {
		jwtAuth = api.NewJWTAuth(cfg.JWTSecret)
	}

	g, ctx := errgroup.WithContext(ctx)

	if botInstance != nil {
		services := controller.Services{
			Users:     userService,
			Courses:   courseService,
			TimeSlots: timeSlotService,
			Finder:    finder,
			Scheduler: schedulingService,
			Lifecycle: lifecycle,
			Location:  cfg.Location,
		}
		if jwtAuth != nil {
			services.Tokens = jwtAuth
		}

		botController := controller.NewBotController(botInstance, services, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			return err
		}

		g.Go(func() error {
			botController.Start(ctx)
			return nil
		})
	}

	if cfg.HTTPEnabled {
		handler := api.NewHandler(userService, courseService, timeSlotService, finder, schedulingService, lifecycle,
			cfg.Location, logger)
		server := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(handler, jwtAuth, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
