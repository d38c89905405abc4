package state

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
	"github.com/stockroom-pos/stockroom/internal/notify"
)

// LedgerPort is the slice of the ledger the facade drives.
type LedgerPort interface {
	Apply(ctx context.Context, intent ledger.TransactionIntent) (int64, error)
	ListStockLevels(ctx context.Context, storeID int64) ([]ledger.StockLevel, error)
	ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.Transaction, error)
}

// NotifyPort is the slice of notifications the facade drives.
type NotifyPort interface {
	EmitTransactionSuccess(ctx context.Context, in notify.TransactionSuccess) error
	List(ctx context.Context, limit int) ([]notify.Notification, error)
}

// MasterPort is the slice of master data the facade drives.
type MasterPort interface {
	ListStores(ctx context.Context) ([]masterdata.Store, error)
	ListCustomers(ctx context.Context) ([]masterdata.Customer, error)
	ListSuppliers(ctx context.Context) ([]masterdata.Supplier, error)
	RecordCustomerPurchase(ctx context.Context, id int64, amount float64) error
	RecordSupplierOrder(ctx context.Context, id int64) error
}

// CatalogPort is the slice of the catalog the facade drives.
type CatalogPort interface {
	ListProducts(ctx context.Context, filters catalog.ListFilters) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}

// Facade orchestrates transaction creation and keeps a cached snapshot of
// everything the dashboard shows.
type Facade struct {
	ledger  LedgerPort
	notify  NotifyPort
	master  MasterPort
	catalog CatalogPort
	logger  *slog.Logger
	now     func() time.Time

	snapshot atomic.Pointer[Snapshot]
}

// NewFacade constructs Facade. The snapshot starts empty; call Refresh to
// populate it.
func NewFacade(l LedgerPort, n NotifyPort, m MasterPort, c CatalogPort, logger *slog.Logger) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Facade{ledger: l, notify: n, master: m, catalog: c, logger: logger, now: time.Now}
	f.snapshot.Store(&Snapshot{})
	return f
}

// Current returns the latest snapshot.
func (f *Facade) Current() Snapshot {
	return *f.snapshot.Load()
}

// Refresh reloads every collection in parallel and swaps the snapshot in one
// step.
func (f *Facade) Refresh(ctx context.Context) error {
	next := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		next.Stores, err = f.master.ListStores(ctx)
		return err
	})
	g.Go(func() (err error) {
		next.Products, err = f.catalog.ListProducts(ctx, catalog.ListFilters{})
		return err
	})
	g.Go(func() (err error) {
		next.Categories, err = f.catalog.ListCategories(ctx)
		return err
	})
	g.Go(func() (err error) {
		next.StockLevels, err = f.ledger.ListStockLevels(ctx, 0)
		return err
	})
	g.Go(func() (err error) {
		next.Transactions, err = f.ledger.ListTransactions(ctx, ledger.TransactionFilter{})
		return err
	})
	g.Go(func() (err error) {
		next.Customers, err = f.master.ListCustomers(ctx)
		return err
	})
	g.Go(func() (err error) {
		next.Suppliers, err = f.master.ListSuppliers(ctx)
		return err
	})
	g.Go(func() (err error) {
		next.Notifications, err = f.notify.List(ctx, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	next.RefreshedAt = f.now().UTC()
	f.snapshot.Store(next)
	return nil
}

// CreateTransaction applies the transaction through the ledger, announces
// completed sales and purchases, updates counterparty counters and refreshes
// the snapshot. Side effects after the apply are best effort; the transaction
// itself is already durable.
func (f *Facade) CreateTransaction(ctx context.Context, intent ledger.TransactionIntent) (int64, error) {
	id, err := f.ledger.Apply(ctx, intent)
	if err != nil {
		return 0, err
	}

	completed := intent.Status == "" || intent.Status == ledger.StatusCompleted
	if completed {
		switch intent.Kind {
		case ledger.KindSale, ledger.KindPurchase:
			if err := f.notify.EmitTransactionSuccess(ctx, notify.TransactionSuccess{
				TransactionID: id,
				Kind:          string(intent.Kind),
				Amount:        intent.Total,
				UserID:        intent.UserID,
				StoreID:       intent.StoreID,
			}); err != nil {
				f.logger.Error("transaction notification failed", "transaction_id", id, "error", err)
			}
		}
		if intent.Kind == ledger.KindSale && intent.CustomerID != 0 {
			if err := f.master.RecordCustomerPurchase(ctx, intent.CustomerID, intent.Total); err != nil {
				f.logger.Warn("customer purchase counter not updated", "customer_id", intent.CustomerID, "error", err)
			}
		}
		if intent.Kind == ledger.KindPurchase && intent.SupplierID != 0 {
			if err := f.master.RecordSupplierOrder(ctx, intent.SupplierID); err != nil {
				f.logger.Warn("supplier order counter not updated", "supplier_id", intent.SupplierID, "error", err)
			}
		}
	}

	if err := f.Refresh(ctx); err != nil {
		f.logger.Error("snapshot refresh failed after transaction", "transaction_id", id, "error", err)
	}
	return id, nil
}

// Stats computes the dashboard headline block for a store from the current
// snapshot.
func (f *Facade) Stats(storeID int64) Stats {
	return ComputeStats(f.Current(), storeID, f.now().UTC())
}
