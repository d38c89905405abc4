package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu        sync.Mutex
	levels    map[string]*StockLevel
	movements []StockMovement
	records   []Transaction
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{levels: make(map[string]*StockLevel)}
}

func key(productID, storeID int64) string {
	return fmt.Sprintf("%d:%d", productID, storeID)
}

func (r *memoryRepo) seed(level StockLevel) {
	r.nextID++
	level.ID = r.nextID
	r.levels[key(level.ProductID, level.StoreID)] = &level
}

// WithTx serializes callers the way the SQL repository's row locks do.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetStockLevel(ctx context.Context, productID, storeID int64) (StockLevel, error) {
	if level, ok := r.levels[key(productID, storeID)]; ok {
		return *level, nil
	}
	return StockLevel{}, ErrStockLevelNotFound
}

func (r *memoryRepo) ListStockLevels(ctx context.Context, storeID int64) ([]StockLevel, error) {
	levels := []StockLevel{}
	for _, level := range r.levels {
		if storeID == 0 || level.StoreID == storeID {
			levels = append(levels, *level)
		}
	}
	return levels, nil
}

func (r *memoryRepo) UpsertStockLevel(ctx context.Context, level StockLevel) (StockLevel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.levels[key(level.ProductID, level.StoreID)]; ok {
		existing.MinStock = level.MinStock
		existing.MaxStock = level.MaxStock
		existing.PurchasePrice = level.PurchasePrice
		existing.SellingPrice = level.SellingPrice
		existing.UpdatedBy = level.UpdatedBy
		return *existing, nil
	}
	r.nextID++
	level.ID = r.nextID
	r.levels[key(level.ProductID, level.StoreID)] = &level
	return level, nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	movements := make([]StockMovement, len(r.movements))
	copy(movements, r.movements)
	return movements, nil
}

func (r *memoryRepo) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	records := make([]Transaction, len(r.records))
	copy(records, r.records)
	return records, nil
}

func (tx *memoryTx) InsertTransaction(ctx context.Context, record Transaction) (int64, error) {
	tx.repo.nextID++
	record.ID = tx.repo.nextID
	tx.repo.records = append(tx.repo.records, record)
	return record.ID, nil
}

func (tx *memoryTx) GetStockLevelForUpdate(ctx context.Context, productID, storeID int64) (StockLevel, error) {
	if level, ok := tx.repo.levels[key(productID, storeID)]; ok {
		return *level, nil
	}
	return StockLevel{}, ErrStockLevelNotFound
}

func (tx *memoryTx) UpdateStockLevel(ctx context.Context, id, stock, updatedBy int64, at time.Time) error {
	for _, level := range tx.repo.levels {
		if level.ID == id {
			level.Stock = stock
			level.UpdatedBy = updatedBy
			level.LastUpdated = at
			return nil
		}
	}
	return ErrStockLevelNotFound
}

func (tx *memoryTx) InsertMovement(ctx context.Context, movement StockMovement) (int64, error) {
	tx.repo.nextID++
	movement.ID = tx.repo.nextID
	tx.repo.movements = append(tx.repo.movements, movement)
	return movement.ID, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	breaches []LowStockBreach
}

func (n *recordingNotifier) EmitLowStock(ctx context.Context, storeID, productID, currentStock, minStock int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.breaches = append(n.breaches, LowStockBreach{StoreID: storeID, ProductID: productID, CurrentStock: currentStock, MinStock: minStock})
	return nil
}

func TestSaleDecrementsStockAndRecordsMovement(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(StockLevel{ProductID: 1, StoreID: 1, Stock: 10, MinStock: 2})
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	txID, err := svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 1, StoreID: 1, Quantity: 4, Price: 5, Total: 20, UserID: 7})
	require.NoError(t, err)
	require.NotZero(t, txID)

	level, err := repo.GetStockLevel(ctx, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 6, level.Stock)
	require.EqualValues(t, 7, level.UpdatedBy)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	require.Equal(t, DirectionOut, m.Direction)
	require.EqualValues(t, 4, m.Quantity)
	require.EqualValues(t, 10, m.PreviousStock)
	require.EqualValues(t, 6, m.NewStock)
	require.Equal(t, txID, m.TransactionID)
}

func TestPurchaseIncrementsStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(StockLevel{ProductID: 1, StoreID: 1, Stock: 3, MinStock: 2})
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, TransactionIntent{Kind: KindPurchase, ProductID: 1, StoreID: 1, Quantity: 5, UserID: 1})
	require.NoError(t, err)

	level, err := repo.GetStockLevel(ctx, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 8, level.Stock)
	require.Len(t, repo.movements, 1)
	require.Equal(t, DirectionIn, repo.movements[0].Direction)
	require.EqualValues(t, 5, repo.movements[0].Quantity)
}

func TestStockClampsAtZero(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(StockLevel{ProductID: 1, StoreID: 1, Stock: 3, MinStock: 0})
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 1, StoreID: 1, Quantity: 8, UserID: 1})
	require.NoError(t, err)

	level, err := repo.GetStockLevel(ctx, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 0, level.Stock)

	require.Len(t, repo.movements, 1)
	require.EqualValues(t, 3, repo.movements[0].PreviousStock)
	require.EqualValues(t, 0, repo.movements[0].NewStock)
	require.EqualValues(t, 8, repo.movements[0].Quantity)
}

func TestTransferMovesStockBetweenStores(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(StockLevel{ProductID: 1, StoreID: 1, Stock: 20, MinStock: 2})
	repo.seed(StockLevel{ProductID: 1, StoreID: 2, Stock: 1, MinStock: 2})
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, TransactionIntent{Kind: KindTransfer, ProductID: 1, StoreID: 1, ToStoreID: 2, Quantity: 5, UserID: 1})
	require.NoError(t, err)

	src, err := repo.GetStockLevel(ctx, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 15, src.Stock)
	dst, err := repo.GetStockLevel(ctx, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 6, dst.Stock)

	require.Len(t, repo.movements, 2)
	require.Equal(t, DirectionOut, repo.movements[0].Direction)
	require.Equal(t, DirectionIn, repo.movements[1].Direction)
}

func TestReturnAddsAndWasteRemoves(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(StockLevel{ProductID: 1, StoreID: 1, Stock: 10, MinStock: 0})
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, TransactionIntent{Kind: KindReturn, ProductID: 1, StoreID: 1, Quantity: 2, UserID: 1})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, TransactionIntent{Kind: KindWaste, ProductID: 1, StoreID: 1, Quantity: 3, UserID: 1})
	require.NoError(t, err)

	level, err := repo.GetStockLevel(ctx, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 9, level.Stock)
	require.Len(t, repo.movements, 2)
}

func TestMissingStockRowSkipsStockStep(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	txID, err := svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 99, StoreID: 1, Quantity: 1, UserID: 1})
	require.NoError(t, err)
	require.NotZero(t, txID)
	require.Len(t, repo.records, 1)
	require.Empty(t, repo.movements)
}

func TestLowStockBreachReachesNotifier(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(StockLevel{ProductID: 1, StoreID: 1, Stock: 10, MinStock: 5})
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 1, StoreID: 1, Quantity: 7, UserID: 1})
	require.NoError(t, err)

	require.Len(t, notifier.breaches, 1)
	b := notifier.breaches[0]
	require.EqualValues(t, 1, b.ProductID)
	require.EqualValues(t, 3, b.CurrentStock)
	require.EqualValues(t, 5, b.MinStock)
}

func TestConcurrentSalesSerialize(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(StockLevel{ProductID: 1, StoreID: 1, Stock: 10, MinStock: 0})
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 1, StoreID: 1, Quantity: 5, UserID: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	level, err := repo.GetStockLevel(ctx, 1, 1)
	require.NoError(t, err)
	require.EqualValues(t, 0, level.Stock)
	require.Len(t, repo.movements, 2)
	require.EqualValues(t, 5, repo.movements[0].NewStock)
	require.EqualValues(t, 0, repo.movements[1].NewStock)
}

func TestApplyValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Apply(ctx, TransactionIntent{Kind: "refund", ProductID: 1, StoreID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 1, StoreID: 1, Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Apply(ctx, TransactionIntent{Kind: KindTransfer, ProductID: 1, StoreID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrMissingDestination)

	_, err = svc.Apply(ctx, TransactionIntent{Kind: KindTransfer, ProductID: 1, StoreID: 1, ToStoreID: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrSameStore)

	_, err = svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 1, StoreID: 1, Quantity: 1, Status: "done"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Apply(ctx, TransactionIntent{Kind: KindSale, ProductID: 1, StoreID: 1, Quantity: 1, RefID: "not-a-uuid"})
	require.Error(t, err)
}
