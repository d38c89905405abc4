package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/stockroom-pos/stockroom/internal/jobs"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/shared"
)

// LowStockSource lists stock rows at or below their minimum.
type LowStockSource interface {
	ListLowStockLevels(ctx context.Context) ([]ledger.StockLevel, error)
}

// LowStockNotifier records a low-stock warning, deduplicating against unread
// ones for the same product.
type LowStockNotifier interface {
	EmitLowStock(ctx context.Context, storeID, productID, currentStock, minStock int64) error
}

// LowStockSweep re-checks every stock row and raises warnings the
// transaction path may have missed, for example after a direct stock-level
// reconfiguration. The notifier's dedup keeps it from stacking alerts.
type LowStockSweep struct {
	source   LowStockSource
	notifier LowStockNotifier
	lock     *shared.SweepLock
	metrics  *jobmetrics.Metrics
	logger   *slog.Logger
}

// NewLowStockSweep constructs the sweep handler.
func NewLowStockSweep(source LowStockSource, notifier LowStockNotifier, lock *shared.SweepLock, metrics *jobmetrics.Metrics, logger *slog.Logger) *LowStockSweep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LowStockSweep{source: source, notifier: notifier, lock: lock, metrics: metrics, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract. When another worker holds
// the sweep lock the run is skipped rather than retried.
func (j *LowStockSweep) Handle(ctx context.Context, _ *asynq.Task) error {
	acquired, err := j.lock.Acquire(ctx)
	if err != nil {
		j.logger.Error("low stock sweep lock", slog.Any("error", err))
		return err
	}
	if !acquired {
		j.logger.Debug("low stock sweep already running elsewhere, skipping")
		return nil
	}
	defer j.lock.Release(ctx)

	tracker := j.metrics.Track("lowstock_sweep")
	return tracker.End(j.sweep(ctx))
}

func (j *LowStockSweep) sweep(ctx context.Context) error {
	levels, err := j.source.ListLowStockLevels(ctx)
	if err != nil {
		return err
	}

	raised := 0
	for _, level := range levels {
		if err := j.notifier.EmitLowStock(ctx, level.StoreID, level.ProductID, level.Stock, level.MinStock); err != nil {
			j.logger.Error("low stock sweep notification",
				slog.Int64("product_id", level.ProductID),
				slog.Int64("store_id", level.StoreID),
				slog.Any("error", err))
			continue
		}
		raised++
		j.metrics.AddLowStockAlerts(level.StoreID, 1)
	}

	if len(levels) > 0 {
		j.logger.Info("low stock sweep finished",
			slog.Int("below_minimum", len(levels)),
			slog.Int("processed", raised))
	}
	return nil
}
