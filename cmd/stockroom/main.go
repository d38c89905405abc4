package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/stockroom-pos/stockroom/internal/app"
	"github.com/stockroom-pos/stockroom/internal/backup"
	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/invoices"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
	"github.com/stockroom-pos/stockroom/internal/notify"
	"github.com/stockroom-pos/stockroom/internal/observability"
	"github.com/stockroom-pos/stockroom/internal/platform/cache"
	"github.com/stockroom-pos/stockroom/internal/platform/db"
	"github.com/stockroom-pos/stockroom/internal/shared"
	"github.com/stockroom-pos/stockroom/internal/state"
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
		logger.Warn("redis unavailable", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	auditLogger := shared.NewAuditLogger(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, logger)

	notifyRepo := notify.NewRepository(pool)
	notifyService := notify.NewService(notifyRepo, catalogRepo, logger)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, notifyService, auditLogger, logger)

	masterRepo := masterdata.NewRepository(pool)
	masterService := masterdata.NewService(masterRepo, logger)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo, logger)

	backupRepo := backup.NewRepository(pool)
	backupService := backup.NewService(backupRepo, logger)

	if cfg.SeedOnStart {
		seeder := state.NewSeeder(masterService, catalogService, ledgerService, logger)
		if err := seeder.Run(ctx); err != nil {
			logger.Error("seed initial data", slog.Any("error", err))
			os.Exit(1)
		}
	}

	facade := state.NewFacade(ledgerService, notifyService, masterService, catalogService, logger)
	if err := facade.Refresh(ctx); err != nil {
		logger.Warn("initial snapshot refresh", slog.Any("error", err))
	}

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		LedgerHandler:     ledger.NewHandler(logger, ledgerService),
		CatalogHandler:    catalog.NewHandler(logger, catalogService),
		MasterDataHandler: masterdata.NewHandler(logger, masterService),
		InvoiceHandler:    invoices.NewHandler(logger, invoiceService),
		NotifyHandler:     notify.NewHandler(logger, notifyService),
		StateHandler:      state.NewHandler(logger, facade, backupService, jobsClient),
		Pool:              pool,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
