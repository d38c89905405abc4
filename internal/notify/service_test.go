package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

type memoryRepo struct {
	mu            sync.Mutex
	notifications []Notification
	nextID        int64

	// checkBarrier, when set, holds every HasUnreadLowStock caller until all
	// expected callers have arrived, forcing them past the unread check
	// before any insert happens.
	checkBarrier *sync.WaitGroup
}

func (r *memoryRepo) Insert(ctx context.Context, n Notification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same rule as the partial unique index on unread warnings: a duplicate
	// resolves to no row and id 0.
	if n.Kind == KindWarning && !n.Read && n.LowStock != nil && r.hasUnreadLowStockLocked(n.LowStock.ProductID) {
		return 0, nil
	}
	r.nextID++
	n.ID = r.nextID
	r.notifications = append(r.notifications, n)
	return n.ID, nil
}

func (r *memoryRepo) HasUnreadLowStock(ctx context.Context, productID int64) (bool, error) {
	if r.checkBarrier != nil {
		r.checkBarrier.Done()
		r.checkBarrier.Wait()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasUnreadLowStockLocked(productID), nil
}

func (r *memoryRepo) hasUnreadLowStockLocked(productID int64) bool {
	for _, n := range r.notifications {
		if n.Kind == KindWarning && !n.Read && n.LowStock != nil && n.LowStock.ProductID == productID {
			return true
		}
	}
	return false
}

func (r *memoryRepo) ListUnread(ctx context.Context, userID, storeID int64) ([]Notification, error) {
	unread := []Notification{}
	for _, n := range r.notifications {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (r *memoryRepo) List(ctx context.Context, limit int) ([]Notification, error) {
	return r.notifications, nil
}

func (r *memoryRepo) MarkRead(ctx context.Context, id int64) error {
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

type staticNamer struct {
	names map[int64]string
}

func (s staticNamer) ProductName(ctx context.Context, productID int64) (string, error) {
	if name, ok := s.names[productID]; ok {
		return name, nil
	}
	return "", shared.ErrNotFound
}

func TestEmitLowStockDeduplicates(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, staticNamer{names: map[int64]string{1: "Espresso Beans"}}, nil)
	ctx := context.Background()

	require.NoError(t, svc.EmitLowStock(ctx, 1, 1, 3, 5))
	require.Len(t, repo.notifications, 1)

	n := repo.notifications[0]
	require.Equal(t, KindWarning, n.Kind)
	require.Equal(t, "Low Stock Alert", n.Title)
	require.Equal(t, "Espresso Beans is running low (3/5)", n.Message)
	require.NotNil(t, n.LowStock)
	require.EqualValues(t, 1, n.LowStock.ProductID)
	require.EqualValues(t, 3, n.LowStock.CurrentStock)
	require.Nil(t, n.Transaction)

	// Re-triggering while the warning is unread must not add a second row.
	require.NoError(t, svc.EmitLowStock(ctx, 1, 1, 2, 5))
	require.Len(t, repo.notifications, 1)

	// Once read, the next breach notifies again.
	require.NoError(t, repo.MarkRead(ctx, n.ID))
	require.NoError(t, svc.EmitLowStock(ctx, 1, 1, 1, 5))
	require.Len(t, repo.notifications, 2)
}

func TestEmitLowStockUnknownProductSkips(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, staticNamer{}, nil)

	require.NoError(t, svc.EmitLowStock(context.Background(), 1, 42, 0, 5))
	require.Empty(t, repo.notifications)
}

func TestEmitTransactionSuccessNoDedup(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, staticNamer{}, nil)
	ctx := context.Background()

	require.NoError(t, svc.EmitTransactionSuccess(ctx, TransactionSuccess{TransactionID: 10, Kind: "sale", Amount: 1234.5, UserID: 1, StoreID: 1}))
	require.NoError(t, svc.EmitTransactionSuccess(ctx, TransactionSuccess{TransactionID: 11, Kind: "purchase", Amount: 80, UserID: 1, StoreID: 1}))

	require.Len(t, repo.notifications, 2)
	require.Equal(t, KindSuccess, repo.notifications[0].Kind)
	require.Equal(t, "Sale of $1,234.50 completed", repo.notifications[0].Message)
	require.Equal(t, "Purchase of $80.00 completed", repo.notifications[1].Message)
	require.NotNil(t, repo.notifications[0].Transaction)
	require.EqualValues(t, 10, repo.notifications[0].Transaction.TransactionID)
	require.Nil(t, repo.notifications[0].LowStock)
}

func TestEmitLowStockConcurrentTriggersSingleWarning(t *testing.T) {
	repo := &memoryRepo{checkBarrier: &sync.WaitGroup{}}
	svc := NewService(repo, staticNamer{names: map[int64]string{1: "Espresso Beans"}}, nil)
	ctx := context.Background()

	// Both emitters pass the unread check before either inserts; the
	// repository's uniqueness rule must collapse them to one warning.
	repo.checkBarrier.Add(2)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- svc.EmitLowStock(ctx, 1, 1, 3, 5)
		}()
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	var unread int
	for _, n := range repo.notifications {
		if n.Kind == KindWarning && !n.Read && n.LowStock != nil && n.LowStock.ProductID == 1 {
			unread++
		}
	}
	require.Equal(t, 1, unread)
}

func TestMarkReadMissing(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, staticNamer{}, nil)

	require.ErrorIs(t, svc.MarkRead(context.Background(), 99), ErrNotificationNotFound)
}
