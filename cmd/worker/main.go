package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/stockroom-pos/stockroom/internal/app"
	"github.com/stockroom-pos/stockroom/internal/catalog"
	jobmetrics "github.com/stockroom-pos/stockroom/internal/jobs"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/notify"
	"github.com/stockroom-pos/stockroom/internal/observability"
	"github.com/stockroom-pos/stockroom/internal/platform/cache"
	"github.com/stockroom-pos/stockroom/internal/platform/db"
	"github.com/stockroom-pos/stockroom/internal/shared"
	"github.com/stockroom-pos/stockroom/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	catalogRepo := catalog.NewRepository(pool)
	notifyRepo := notify.NewRepository(pool)
	notifyService := notify.NewService(notifyRepo, catalogRepo, logger)
	ledgerRepo := ledger.NewRepository(pool)

	sweepLock := shared.NewSweepLock(redisClient, shared.LowStockSweepLockKey, cfg.LowStockSweepLockTTL)

	observer := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(observer.Registerer())

	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: observer.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
	}()

	sweep := jobs.NewLowStockSweep(ledgerRepo, notifyService, sweepLock, metrics, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLowStockSweep, Handler: sweep.Handle},
		},
		Cron: []jobs.CronRegistration{
			{
				Spec:    fmt.Sprintf("@every %s", cfg.LowStockSweepInterval),
				Task:    jobs.NewLowStockSweepTask(),
				Options: []asynq.Option{asynq.MaxRetry(0), asynq.Queue(jobs.QueueDefault)},
			},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker",
		slog.String("redis", cfg.RedisAddr),
		slog.Duration("sweep_interval", cfg.LowStockSweepInterval))

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
