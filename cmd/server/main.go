package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskpulse/backend/api/handler"
	"github.com/taskpulse/backend/internal/config"
	"github.com/taskpulse/backend/internal/infrastructure/bus"
	"github.com/taskpulse/backend/internal/infrastructure/monitor"
	"github.com/taskpulse/backend/internal/infrastructure/outbox"
	pgInfra "github.com/taskpulse/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskpulse/backend/internal/infrastructure/redis"
	"github.com/taskpulse/backend/internal/middleware"
	"github.com/taskpulse/backend/internal/notifier"
	"github.com/taskpulse/backend/internal/router"
	"github.com/taskpulse/backend/internal/services"
	"github.com/taskpulse/backend/internal/services/lifecycle"
	"github.com/taskpulse/backend/pkg/httpcontext"
	"github.com/taskpulse/backend/pkg/logger"
	"github.com/taskpulse/backend/repository/postgres"
	redisRepo "github.com/taskpulse/backend/repository/redis"
	"github.com/taskpulse/backend/usecase"
	notifyUC "github.com/taskpulse/backend/usecase/notify"
	seriesUC "github.com/taskpulse/backend/usecase/series"
	taskUC "github.com/taskpulse/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := outbox.Open(cfg.Outbox.Path, "outbox")
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	seriesRepo := postgres.NewSeriesRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	reminderQueue := redisRepo.NewReminderQueue(redisClient)

	publisher := services.NewOutboxPublisher(outboxStore, zapLogger)

	relay := services.NewEventRelay(
		outboxStore,
		bus.NewRedis(redisClient),
		mon,
		zapLogger,
		services.RelayConfig{
			Interval:   cfg.Outbox.DrainInterval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetry,
		},
	)
	relay.Start()
	manager.Register("event_relay", func(ctx context.Context) error {
		relay.Stop(ctx)
		return nil
	})

	scheduler := services.NewReminderScheduler(reminderQueue, zapLogger)

	notifiers := []usecase.Notifier{notifier.NewConsole(zapLogger)}
	if cfg.Notifier.EmailAddr != "" {
		notifiers = append(notifiers, notifier.NewEmail(notifier.EmailConfig{
			Addr: cfg.Notifier.EmailAddr,
			From: cfg.Notifier.EmailFrom,
			To:   cfg.Notifier.EmailTo,
		}))
	}
	if cfg.Notifier.PushGatewayURL != "" {
		notifiers = append(notifiers, notifier.NewPush(notifier.PushConfig{
			GatewayURL: cfg.Notifier.PushGatewayURL,
			Timeout:    cfg.Notifier.PushTimeout,
		}))
	}

	notifyUseCase := notifyUC.New(notifiers, notificationRepo, publisher, zapLogger)
	taskUseCase := taskUC.New(taskRepo, seriesRepo, publisher, scheduler, zapLogger)
	seriesUseCase := seriesUC.New(seriesRepo, taskRepo, publisher, scheduler, zapLogger)

	dispatcher := services.NewReminderDispatcher(
		reminderQueue,
		notifyUseCase,
		redisInfra.NewDeduper(redisClient, cfg.Reminder.DedupTTL),
		publisher,
		zapLogger,
		services.DispatcherConfig{
			Interval:  cfg.Reminder.PollInterval,
			BatchSize: cfg.Reminder.BatchSize,
		},
	)
	dispatcher.Start()
	manager.Register("reminder_dispatcher", func(ctx context.Context) error {
		dispatcher.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Series:       apiHandler.NewSeriesHandler(seriesUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notifyUseCase, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
