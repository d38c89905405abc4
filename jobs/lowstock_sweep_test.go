package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/shared"
)

type staticSource struct {
	levels []ledger.StockLevel
}

func (s staticSource) ListLowStockLevels(_ context.Context) ([]ledger.StockLevel, error) {
	return s.levels, nil
}

type recordingNotifier struct {
	emitted []int64
}

func (n *recordingNotifier) EmitLowStock(_ context.Context, _, productID, _, _ int64) error {
	n.emitted = append(n.emitted, productID)
	return nil
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestSweepNotifiesEveryLowRow(t *testing.T) {
	source := staticSource{levels: []ledger.StockLevel{
		{ProductID: 1, StoreID: 1, Stock: 2, MinStock: 5},
		{ProductID: 7, StoreID: 2, Stock: 0, MinStock: 10},
	}}
	notifier := &recordingNotifier{}
	lock := shared.NewSweepLock(newRedisClient(t), shared.LowStockSweepLockKey, time.Minute)

	sweep := NewLowStockSweep(source, notifier, lock, nil, nil)
	require.NoError(t, sweep.Handle(context.Background(), NewLowStockSweepTask()))
	require.Equal(t, []int64{1, 7}, notifier.emitted)
}

func TestSweepSkipsWhenLockHeld(t *testing.T) {
	client := newRedisClient(t)
	require.NoError(t, client.SetNX(context.Background(), shared.LowStockSweepLockKey, "other-worker", time.Minute).Err())

	notifier := &recordingNotifier{}
	lock := shared.NewSweepLock(client, shared.LowStockSweepLockKey, time.Minute)
	sweep := NewLowStockSweep(staticSource{levels: []ledger.StockLevel{{ProductID: 1, StoreID: 1}}}, notifier, lock, nil, nil)

	require.NoError(t, sweep.Handle(context.Background(), NewLowStockSweepTask()))
	require.Empty(t, notifier.emitted)
}

func TestSweepReleasesLock(t *testing.T) {
	client := newRedisClient(t)
	lock := shared.NewSweepLock(client, shared.LowStockSweepLockKey, time.Minute)
	sweep := NewLowStockSweep(staticSource{}, &recordingNotifier{}, lock, nil, nil)

	require.NoError(t, sweep.Handle(context.Background(), NewLowStockSweepTask()))

	exists, err := client.Exists(context.Background(), shared.LowStockSweepLockKey).Result()
	require.NoError(t, err)
	require.Zero(t, exists)
}
