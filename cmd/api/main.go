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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/attendance-service/internal/adapter/chromedp_portal"
	"github.com/user/attendance-service/internal/adapter/postgres"
	redis_adapter "github.com/user/attendance-service/internal/adapter/redis"
	"github.com/user/attendance-service/internal/delivery/http/handler"
	"github.com/user/attendance-service/internal/delivery/http/router"
	"github.com/user/attendance-service/internal/parser"
	"github.com/user/attendance-service/internal/usecase"
	"github.com/user/attendance-service/pkg/config"
	"github.com/user/attendance-service/pkg/logger"
	"github.com/user/attendance-service/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	// --- Logger ---
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zl.Sync()

	// --- Metrics ---
	metrics.Init()

	// --- Database Connections ---
	ctx := context.Background()

	// PostgreSQL
	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		zl.Fatal("Unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		zl.Fatal("Unable to prepare database schema", zap.Error(err))
	}
	zl.Info("PostgreSQL connection pool established")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		zl.Fatal("Unable to connect to Redis", zap.Error(err))
	}
	zl.Info("Redis connection established")

	// --- Repositories ---
	cacheRepo := redis_adapter.NewCacheRepo(rdb)
	lockRepo := redis_adapter.NewLockRepo(rdb)
	snapshotRepo := postgres.NewSnapshotRepo(dbpool)
	failedFetchRepo := postgres.NewFailedFetchRepo(dbpool)

	portal := chromedp_portal.NewChromedpPortal(chromedp_portal.Options{
		BaseURL:         cfg.PortalURL,
		Headless:        cfg.Headless,
		PageLoadTimeout: cfg.PageLoadTimeoutDuration(),
		StepDelay:       cfg.StepDelay(),
		MaxSessions:     cfg.MaxBrowsers,
	}, zl)
	defer portal.Close()

	// --- Use Cases ---
	attendance := usecase.NewAttendanceUseCase(
		portal,
		parser.NewExtractor(parser.NewPolicy(cfg.PermissiveHeaders, cfg.PreferComputedPercentage)),
		usecase.Stores{Cache: cacheRepo, Locks: lockRepo, Snapshots: snapshotRepo, Failures: failedFetchRepo},
		usecase.Options{CacheTTL: cfg.CacheTTLDuration(), LockTTL: cfg.FetchLockTTLDuration()},
		zl,
	)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(attendance, cfg.LowAttendanceThreshold, map[string]handler.Pinger{
		"postgres": snapshotRepo,
		"redis":    cacheRepo,
	}, zl)
	httpRouter := router.New(apiHandler, router.Options{
		Logger:         zl,
		CORSOrigins:    cfg.CORSOrigins(),
		RequestTimeout: cfg.RequestTimeout(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	zl.Info("Server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
	zl.Info("Server exiting")
}
