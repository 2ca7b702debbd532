package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stepik-tools/sync-service/internal/cache"
	"github.com/stepik-tools/sync-service/internal/config"
	"github.com/stepik-tools/sync-service/internal/handlers"
	"github.com/stepik-tools/sync-service/internal/repositories"
	"github.com/stepik-tools/sync-service/internal/repositories/postgres"
	"github.com/stepik-tools/sync-service/internal/scheduler"
	"github.com/stepik-tools/sync-service/internal/services"
	"github.com/stepik-tools/sync-service/internal/sheets"
	"github.com/stepik-tools/sync-service/internal/stepik"
	"github.com/stepik-tools/sync-service/internal/utils"
	"github.com/stepik-tools/sync-service/internal/validator"
	"github.com/stepik-tools/sync-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	if err := validator.New().ValidateConfig(cfg); err != nil {
		logger.LogError(err, "configuration is invalid")
		os.Exit(1)
	}
	logger.Info("starting sync service", "config", cfg.String())

	// Optional run history store
	var runs repositories.SyncRunRepository
	if cfg.DatabaseURL != "" {
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			logger.LogError(err, "database connection failed")
			os.Exit(1)
		}
		runs = postgres.NewSyncRunPostgreSQL(db)
	} else {
		logger.Info("DATABASE_URL not set, run history disabled")
	}

	// Optional latest-report cache
	var cacheService cache.CacheService
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.LogError(err, "redis connection failed")
			os.Exit(1)
		}
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
	} else {
		logger.Info("REDIS_URL not set, status endpoint will report no data")
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.LogError(err, "event publisher setup failed")
		os.Exit(1)
	}
	defer publisher.Close()

	client := stepik.NewClient(stepik.ClientConfig{
		BaseURL:           cfg.StepikBaseURL,
		ClientID:          cfg.StepikClientID,
		ClientSecret:      cfg.StepikClientSecret,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})

	sheet := sheets.NewExcelSheet(cfg.WorkbookPath, cfg.SheetName, sheets.ExcelGeometry{
		HeaderRow:       cfg.HeaderRow,
		CodeStartCol:    cfg.CodeStartCol,
		StudentCol:      cfg.StudentCol,
		StudentStartRow: cfg.StudentStartRow,
	})

	syncService := services.NewSyncService(
		stepik.NewScanner(client, logger),
		stepik.NewSubmissionResolver(client, logger),
		sheet,
		publisher,
		runs,
		cacheService,
		logger,
		services.SyncServiceConfig{CourseID: cfg.CourseID},
	)

	sched := scheduler.New(syncService, logger)
	if err := sched.Start(cfg.SyncCron); err != nil {
		logger.LogError(err, "scheduler start failed", "cron", cfg.SyncCron)
		os.Exit(1)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger))
	handlers.NewHandlerManager(syncService, sched, runs, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "http server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(ctx); err != nil {
		logger.LogError(err, "scheduler did not stop cleanly")
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.LogError(err, "http server did not stop cleanly")
	}
}
