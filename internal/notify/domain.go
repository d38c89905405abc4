package notify

import (
	"errors"
	"time"
)

// Kind enumerates notification severities.
type Kind string

const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindSuccess Kind = "success"
)

// LowStockPayload is carried by warning notifications raised for a stock breach.
type LowStockPayload struct {
	ProductID    int64 `json:"productId"`
	CurrentStock int64 `json:"currentStock"`
	MinStock     int64 `json:"minStock"`
}

// TransactionPayload is carried by success notifications for completed transactions.
type TransactionPayload struct {
	TransactionID int64   `json:"transactionId"`
	Amount        float64 `json:"amount"`
}

// Notification is an append-only record; only the read flag ever changes.
// The payload is tagged by kind: warnings carry LowStock, successes carry
// Transaction, the rest carry neither.
type Notification struct {
	ID          int64               `json:"id"`
	Kind        Kind                `json:"kind"`
	Title       string              `json:"title"`
	Message     string              `json:"message"`
	Read        bool                `json:"read"`
	UserID      int64               `json:"userId,omitempty"`
	StoreID     int64               `json:"storeId,omitempty"`
	LowStock    *LowStockPayload    `json:"lowStock,omitempty"`
	Transaction *TransactionPayload `json:"transaction,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// TransactionSuccess describes a completed transaction to announce.
type TransactionSuccess struct {
	TransactionID int64
	Kind          string
	Amount        float64
	UserID        int64
	StoreID       int64
}

// ErrNotificationNotFound indicates a missing notification row.
var ErrNotificationNotFound = errors.New("notify: notification not found")
