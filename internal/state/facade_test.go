package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
	"github.com/stockroom-pos/stockroom/internal/notify"
)

type fakeLedger struct {
	nextID       int64
	applied      []ledger.TransactionIntent
	levels       []ledger.StockLevel
	transactions []ledger.Transaction
	applyErr     error
}

func (f *fakeLedger) Apply(_ context.Context, intent ledger.TransactionIntent) (int64, error) {
	if f.applyErr != nil {
		return 0, f.applyErr
	}
	f.nextID++
	f.applied = append(f.applied, intent)
	f.transactions = append(f.transactions, ledger.Transaction{
		ID:        f.nextID,
		Kind:      intent.Kind,
		ProductID: intent.ProductID,
		StoreID:   intent.StoreID,
		Quantity:  intent.Quantity,
		Total:     intent.Total,
		Status:    ledger.StatusCompleted,
		CreatedAt: time.Now().UTC(),
	})
	return f.nextID, nil
}

func (f *fakeLedger) ListStockLevels(_ context.Context, _ int64) ([]ledger.StockLevel, error) {
	return f.levels, nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, _ ledger.TransactionFilter) ([]ledger.Transaction, error) {
	return f.transactions, nil
}

type fakeNotify struct {
	successes []notify.TransactionSuccess
}

func (f *fakeNotify) EmitTransactionSuccess(_ context.Context, in notify.TransactionSuccess) error {
	f.successes = append(f.successes, in)
	return nil
}

func (f *fakeNotify) List(_ context.Context, _ int) ([]notify.Notification, error) {
	return nil, nil
}

type fakeMaster struct {
	purchases map[int64]float64
	orders    map[int64]int
}

func newFakeMaster() *fakeMaster {
	return &fakeMaster{purchases: map[int64]float64{}, orders: map[int64]int{}}
}

func (f *fakeMaster) ListStores(_ context.Context) ([]masterdata.Store, error) {
	return []masterdata.Store{{ID: 1, Name: "Main"}}, nil
}

func (f *fakeMaster) ListCustomers(_ context.Context) ([]masterdata.Customer, error) {
	return []masterdata.Customer{{ID: 5, Name: "Alice"}}, nil
}

func (f *fakeMaster) ListSuppliers(_ context.Context) ([]masterdata.Supplier, error) {
	return nil, nil
}

func (f *fakeMaster) RecordCustomerPurchase(_ context.Context, id int64, amount float64) error {
	f.purchases[id] += amount
	return nil
}

func (f *fakeMaster) RecordSupplierOrder(_ context.Context, id int64) error {
	f.orders[id]++
	return nil
}

type fakeCatalog struct{}

func (fakeCatalog) ListProducts(_ context.Context, _ catalog.ListFilters) ([]catalog.Product, error) {
	return []catalog.Product{{ID: 1, Name: "Sparkling Water 500ml"}}, nil
}

func (fakeCatalog) ListCategories(_ context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func newTestFacade() (*Facade, *fakeLedger, *fakeNotify, *fakeMaster) {
	l := &fakeLedger{}
	n := &fakeNotify{}
	m := newFakeMaster()
	f := NewFacade(l, n, m, fakeCatalog{}, nil)
	return f, l, n, m
}

func TestCreateTransactionAnnouncesAndRefreshes(t *testing.T) {
	f, l, n, m := newTestFacade()
	ctx := context.Background()

	id, err := f.CreateTransaction(ctx, ledger.TransactionIntent{
		Kind:       ledger.KindSale,
		ProductID:  1,
		StoreID:    1,
		Quantity:   2,
		Total:      24.50,
		UserID:     3,
		CustomerID: 5,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	require.Len(t, l.applied, 1)
	require.Len(t, n.successes, 1)
	require.Equal(t, "sale", n.successes[0].Kind)
	require.InDelta(t, 24.50, n.successes[0].Amount, 0.001)
	require.InDelta(t, 24.50, m.purchases[5], 0.001)

	snap := f.Current()
	require.Len(t, snap.Transactions, 1)
	require.False(t, snap.RefreshedAt.IsZero())
}

func TestCreateTransactionPendingSkipsSideEffects(t *testing.T) {
	f, _, n, m := newTestFacade()

	_, err := f.CreateTransaction(context.Background(), ledger.TransactionIntent{
		Kind:       ledger.KindSale,
		ProductID:  1,
		StoreID:    1,
		Quantity:   1,
		Total:      10,
		UserID:     3,
		CustomerID: 5,
		Status:     ledger.StatusPending,
	})
	require.NoError(t, err)
	require.Empty(t, n.successes)
	require.Empty(t, m.purchases)
}

func TestCreateTransactionPurchaseBumpsSupplier(t *testing.T) {
	f, _, n, m := newTestFacade()

	_, err := f.CreateTransaction(context.Background(), ledger.TransactionIntent{
		Kind:       ledger.KindPurchase,
		ProductID:  1,
		StoreID:    1,
		Quantity:   10,
		Total:      45,
		UserID:     3,
		SupplierID: 9,
	})
	require.NoError(t, err)
	require.Len(t, n.successes, 1)
	require.Equal(t, "purchase", n.successes[0].Kind)
	require.Equal(t, 1, m.orders[9])
}

func TestCreateTransactionFailureStopsOrchestration(t *testing.T) {
	f, l, n, _ := newTestFacade()
	l.applyErr = ledger.ErrInvalidQuantity

	_, err := f.CreateTransaction(context.Background(), ledger.TransactionIntent{
		Kind:      ledger.KindSale,
		ProductID: 1,
		StoreID:   1,
		Quantity:  0,
		UserID:    3,
	})
	require.ErrorIs(t, err, ledger.ErrInvalidQuantity)
	require.Empty(t, n.successes)
}

func TestRefreshSwapsWholeSnapshot(t *testing.T) {
	f, l, _, _ := newTestFacade()
	ctx := context.Background()

	require.NoError(t, f.Refresh(ctx))
	first := f.Current()
	require.Len(t, first.Stores, 1)
	require.Empty(t, first.Transactions)

	l.transactions = append(l.transactions, ledger.Transaction{ID: 1, Kind: ledger.KindSale})
	require.NoError(t, f.Refresh(ctx))
	second := f.Current()
	require.Len(t, second.Transactions, 1)

	// the first snapshot is untouched
	require.Empty(t, first.Transactions)
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Transactions: []ledger.Transaction{
			{StoreID: 1, Kind: ledger.KindSale, Status: ledger.StatusCompleted, Total: 100, CreatedAt: now.AddDate(0, 0, -5)},
			{StoreID: 1, Kind: ledger.KindSale, Status: ledger.StatusCompleted, Total: 50, CreatedAt: now.AddDate(0, 0, -45)},
			{StoreID: 1, Kind: ledger.KindPurchase, Status: ledger.StatusCompleted, Total: 60, CreatedAt: now.AddDate(0, 0, -10)},
			// other store and non-completed rows are excluded
			{StoreID: 2, Kind: ledger.KindSale, Status: ledger.StatusCompleted, Total: 999, CreatedAt: now},
			{StoreID: 1, Kind: ledger.KindSale, Status: ledger.StatusPending, Total: 77, CreatedAt: now},
		},
		StockLevels: []ledger.StockLevel{
			{StoreID: 1, Stock: 2, MinStock: 5},
			{StoreID: 1, Stock: 50, MinStock: 5},
			{StoreID: 2, Stock: 0, MinStock: 5},
		},
		Customers: []masterdata.Customer{{ID: 1}, {ID: 2}},
	}

	stats := ComputeStats(snap, 1, now)
	require.InDelta(t, 150, stats.TotalSales, 0.001)
	require.InDelta(t, 60, stats.TotalPurchases, 0.001)
	require.InDelta(t, 90, stats.Profit, 0.001)
	require.Equal(t, 2, stats.TotalProducts)
	require.Equal(t, 1, stats.LowStockItems)
	require.Equal(t, 2, stats.TotalCustomers)
	require.Equal(t, 2, stats.TotalOrders)
	require.InDelta(t, 75, stats.AverageOrderValue, 0.001)
	require.InDelta(t, 60, stats.ProfitMargin, 0.001)
	// 100 recent vs 50 prior
	require.InDelta(t, 100, stats.SalesGrowth, 0.001)
}
