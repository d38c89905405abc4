package backup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
	"github.com/stockroom-pos/stockroom/internal/shared"
)

type memoryRepo struct {
	doc Document
}

func (m *memoryRepo) ExportAll(_ context.Context) (Document, error) {
	doc := m.doc
	doc.ExportDate = time.Now().UTC()
	return doc, nil
}

func (m *memoryRepo) ImportAll(_ context.Context, doc Document) error {
	m.doc = doc
	return nil
}

func TestExportImportRoundTrip(t *testing.T) {
	repo := &memoryRepo{
		doc: Document{
			Users: []UserRecord{{
				User:         masterdata.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: masterdata.RoleAdmin, Active: true},
				PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
			}},
			Stores: []masterdata.Store{{ID: 1, Name: "Main", Currency: "USD", Timezone: "UTC", Active: true}},
			StoreProducts: []ledger.StockLevel{
				{ID: 1, ProductID: 1, StoreID: 1, Stock: 42, MinStock: 5},
			},
			Transactions: []ledger.Transaction{
				{ID: 1, Kind: ledger.KindSale, ProductID: 1, StoreID: 1, Quantity: 2, Total: 20, Status: ledger.StatusCompleted},
			},
		},
	}
	svc := NewService(repo, nil)

	payload, err := svc.Export(context.Background())
	require.NoError(t, err)

	// password hashes survive the trip, and the API-facing json:"-" does not
	// strip them from backups
	require.Contains(t, string(payload), "passwordHash")
	require.Contains(t, string(payload), "exportDate")

	target := &memoryRepo{}
	restore := NewService(target, nil)
	require.NoError(t, restore.Import(context.Background(), payload))

	require.Equal(t, repo.doc.Users, target.doc.Users)
	require.Equal(t, repo.doc.Stores, target.doc.Stores)
	require.Equal(t, repo.doc.StoreProducts, target.doc.StoreProducts)
	require.Equal(t, repo.doc.Transactions, target.doc.Transactions)
}

func TestImportRejectsMalformedPayload(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil)
	err := svc.Import(context.Background(), []byte(`{"users": [`))
	require.ErrorIs(t, err, shared.ErrInvalidDataFormat)
}

func TestImportIgnoresUnknownCollections(t *testing.T) {
	target := &memoryRepo{}
	svc := NewService(target, nil)

	payload := map[string]any{
		"stores":        []map[string]any{{"id": 1, "name": "Main", "active": true}},
		"flux_widgets":  []int{1, 2, 3},
		"somethingElse": "ignored",
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, svc.Import(context.Background(), raw))
	require.Len(t, target.doc.Stores, 1)
	require.Empty(t, target.doc.Users)
}
