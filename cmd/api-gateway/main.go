package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/bible-studies-api/api/swagger"
	"github.com/noah-isme/bible-studies-api/internal/handler"
	"github.com/noah-isme/bible-studies-api/internal/repository"
	"github.com/noah-isme/bible-studies-api/internal/router"
	"github.com/noah-isme/bible-studies-api/internal/service"
	"github.com/noah-isme/bible-studies-api/pkg/cache"
	"github.com/noah-isme/bible-studies-api/pkg/config"
	"github.com/noah-isme/bible-studies-api/pkg/database"
	"github.com/noah-isme/bible-studies-api/pkg/logger"
)

// @title Bible Studies Scheduling API
// @version 1.0.0
// @description Lecturer scheduling with availability conflict checks.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(ctx, db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.OptionsTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	lecturerRepo := repository.NewLecturerRepository(db)
	classRepo := repository.NewClassRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	availability := service.NewAvailabilityService(scheduleRepo, metrics, logr)
	options := service.NewOptionService(lecturerRepo, classRepo, cacheSvc, cfg.Cache.OptionsTTL, logr)
	schedules := service.NewScheduleService(scheduleRepo, availability, cacheSvc, metrics, validate, logr, service.ScheduleServiceConfig{
		GuardFailOpen: cfg.Booking.GuardFailOpen,
		UpcomingTTL:   cfg.Cache.UpcomingTTL,
		Location:      cfg.Location(),
	})
	exports := service.NewExportService(schedules, logr, nil, nil)
	bookings := service.NewBookingService(options, schedules, availability, metrics, validate, logr, service.BookingServiceConfig{
		SessionTTL:      cfg.Booking.SessionTTL,
		Debounce:        cfg.Booking.Debounce,
		CheckWorkers:    cfg.Booking.CheckWorkers,
		CheckBuffer:     cfg.Booking.CheckBuffer,
		JanitorInterval: cfg.Booking.JanitorInterval,
	})
	bookings.Start(ctx)
	defer bookings.Stop()

	var cachePinger handler.Pinger
	if redisClient != nil {
		cachePinger = cacheRepo
	}

	engine := router.Setup(cfg, router.Handlers{
		Lecturer: handler.NewLecturerHandler(options, availability),
		Class:    handler.NewClassHandler(options),
		Schedule: handler.NewScheduleHandler(schedules, exports),
		Booking:  handler.NewBookingHandler(bookings),
		Metrics:  handler.NewMetricsHandler(metrics, db, cachePinger),
	}, metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
