package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-trigger-engine/internal/app"
	"github.com/KasumiMercury/primind-trigger-engine/internal/config"
	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/handler"
	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/oswake"
	"github.com/KasumiMercury/primind-trigger-engine/internal/infra/repository"
	"github.com/KasumiMercury/primind-trigger-engine/internal/observability/logging"
	"github.com/KasumiMercury/primind-trigger-engine/internal/observability/metrics"
	"github.com/KasumiMercury/primind-trigger-engine/internal/observability/middleware"
	"github.com/KasumiMercury/primind-trigger-engine/internal/observability/tracing"
	"github.com/KasumiMercury/primind-trigger-engine/internal/trigger"
)

var Version = "dev"

const serviceName = "trigger-engine"

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logging.Setup(logging.Config{
		Level:       cfg.Log.Level,
		ServiceName: serviceName,
		ProjectID:   cfg.PubSub.GCloudProjectID,
	})

	ctx := context.Background()

	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}

	tracerProvider, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
	})
	if err != nil {
		slog.Error("failed to initialize tracer provider", "error", err)
		return 1
	}
	tracerProvider.SetGlobal()

	meterProvider, err := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
	})
	if err != nil {
		slog.Error("failed to initialize meter provider", "error", err)
		return 1
	}
	meterProvider.SetGlobal()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown tracer provider", "error", err)
		}

		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown meter provider", "error", err)
		}
	}()

	db, err := initDatabase(cfg.Database)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		return 1
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get underlying sql.DB", "error", err)
		return 1
	}

	publisher, err := initPublisher(ctx, cfg)
	if err != nil {
		slog.Error("failed to create publisher", "error", err)
		return 1
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("failed to close publisher", "error", err)
		}
	}()

	reminderRepo := repository.NewReminderRepository(db)
	alarmRepo := repository.NewAlarmRepository(db)

	triggerCfg := trigger.DefaultConfig()
	triggerCfg.DefaultSnooze = cfg.Trigger.DefaultSnooze
	triggerCfg.ReentryDebounce = cfg.Trigger.ReentryDebounce
	triggerCfg.UntilLeaveCooldown = cfg.Trigger.UntilLeaveCooldown
	triggerCfg.MaxRegions = cfg.Trigger.MaxRegions

	events := make(chan trigger.Event, 64)

	timeService := oswake.NewTimerWakeService(events)
	defer func() {
		if err := timeService.Close(); err != nil {
			slog.Warn("failed to close wake service", "error", err)
		}
	}()

	spatialService := oswake.NewManualSpatialService()

	timeSched := trigger.NewTimeTriggerScheduler(timeService)
	spatial := trigger.NewSpatialTriggerController(spatialService, reminderRepo, events, triggerCfg.MaxRegions)

	dispatcher := trigger.NewDispatcher(reminderRepo, alarmRepo, publisher, timeSched, spatial, triggerCfg, events)
	snoozer := trigger.NewSnoozeCoordinator(reminderRepo, alarmRepo, timeSched, spatial, triggerCfg)
	recovery := trigger.NewRecoveryService(reminderRepo, alarmRepo, timeSched, spatial, events)

	dispatchCtx, stopDispatch := context.WithCancel(ctx)
	defer stopDispatch()

	go dispatcher.Run(dispatchCtx)

	recoveryCtx := logging.WithModule(ctx, logging.ModuleRecovery)
	if err := recovery.RecoverAll(recoveryCtx); err != nil {
		slog.Error("boot recovery failed", "error", err)
		return 1
	}

	reminderUseCase := app.NewReminderUseCase(reminderRepo, timeSched, spatial, snoozer)
	alarmUseCase := app.NewAlarmUseCase(alarmRepo, timeSched, snoozer)

	reminderHandler := handler.NewReminderHandler(reminderUseCase)
	alarmHandler := handler.NewAlarmHandler(alarmUseCase)
	triggerHandler := handler.NewTriggerHandler(spatial)

	router, err := setupRouter(meterProvider, reminderHandler, alarmHandler, triggerHandler)
	if err != nil {
		slog.Error("failed to set up router", "error", err)
		return 1
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"address", cfg.Server.Address(),
			"version", Version,
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", "error", err)
			return 1
		}

		stopDispatch()

		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", "error", err)
		return 1
	}
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(200 * time.Millisecond),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	meterProvider *metrics.Provider,
	reminderHandler *handler.ReminderHandler,
	alarmHandler *handler.AlarmHandler,
	triggerHandler *handler.TriggerHandler,
) (*gin.Engine, error) {
	httpMetrics, err := metrics.NewHTTPMetrics(meterProvider.Meter(serviceName))
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.PanicRecoveryGin())
	router.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/ping"},
		Module:      logging.ModuleAPI,
		TracerName:  serviceName,
		HTTPMetrics: httpMetrics,
	}))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1 := router.Group("/api/v1")
	reminderHandler.RegisterRoutes(v1)
	alarmHandler.RegisterRoutes(v1)
	triggerHandler.RegisterRoutes(v1)

	return router, nil
}
