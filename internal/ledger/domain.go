package ledger

import (
	"errors"
	"time"
)

// Kind enumerates supported transaction kinds.
type Kind string

const (
	// KindSale represents a customer sale.
	KindSale Kind = "sale"
	// KindPurchase represents incoming stock from a supplier.
	KindPurchase Kind = "purchase"
	// KindTransfer moves stock between two stores.
	KindTransfer Kind = "transfer"
	// KindAdjustment is a manual stock write-down.
	KindAdjustment Kind = "adjustment"
	// KindReturn represents a customer return back into stock.
	KindReturn Kind = "return"
	// KindWaste represents spoiled or damaged stock written off.
	KindWaste Kind = "waste"
)

// Status enumerates transaction lifecycle states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Direction marks whether a movement added or removed stock.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Transaction models a recorded sale/purchase/transfer/etc.
type Transaction struct {
	ID         int64     `json:"id"`
	Kind       Kind      `json:"kind"`
	ProductID  int64     `json:"productId"`
	StoreID    int64     `json:"storeId"`
	ToStoreID  int64     `json:"toStoreId,omitempty"`
	Quantity   int64     `json:"quantity"`
	Price      float64   `json:"price"`
	Total      float64   `json:"total"`
	UserID     int64     `json:"userId"`
	CustomerID int64     `json:"customerId,omitempty"`
	SupplierID int64     `json:"supplierId,omitempty"`
	InvoiceID  int64     `json:"invoiceId,omitempty"`
	RefID      string    `json:"refId,omitempty"`
	Notes      string    `json:"notes"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StockLevel is the per-(product, store) stock row. Exactly one row exists
// per pair; its stock counter changes only through the ledger.
type StockLevel struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	StoreID       int64     `json:"storeId"`
	Stock         int64     `json:"stock"`
	MinStock      int64     `json:"minStock"`
	MaxStock      int64     `json:"maxStock"`
	PurchasePrice float64   `json:"purchasePrice"`
	SellingPrice  float64   `json:"sellingPrice"`
	LastUpdated   time.Time `json:"lastUpdated"`
	UpdatedBy     int64     `json:"updatedBy"`
}

// StockMovement is the audit-trail record appended for every stock change.
type StockMovement struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"productId"`
	StoreID       int64     `json:"storeId"`
	TransactionID int64     `json:"transactionId"`
	Direction     Direction `json:"direction"`
	Quantity      int64     `json:"quantity"`
	PreviousStock int64     `json:"previousStock"`
	NewStock      int64     `json:"newStock"`
	Reason        string    `json:"reason"`
	UserID        int64     `json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TransactionIntent describes a transaction to be applied.
type TransactionIntent struct {
	Kind       Kind
	ProductID  int64
	StoreID    int64
	ToStoreID  int64
	Quantity   int64
	Price      float64
	Total      float64
	UserID     int64
	CustomerID int64
	SupplierID int64
	InvoiceID  int64
	RefID      string
	Notes      string
	Status     Status
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	ProductID int64
	StoreID   int64
	From      time.Time
	To        time.Time
	Limit     int
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	StoreID int64
	Kind    Kind
	Status  Status
	Limit   int
}

// LowStockBreach reports a stock level at or below its minimum after an apply.
type LowStockBreach struct {
	StoreID      int64
	ProductID    int64
	CurrentStock int64
	MinStock     int64
}

// ErrInvalidQuantity indicates a non-positive quantity.
var ErrInvalidQuantity = errors.New("ledger: quantity must be positive")

// ErrUnknownKind indicates an unrecognised transaction kind.
var ErrUnknownKind = errors.New("ledger: unknown transaction kind")

// ErrInvalidStatus indicates an unrecognised transaction status.
var ErrInvalidStatus = errors.New("ledger: invalid transaction status")

// ErrMissingDestination indicates a transfer without a destination store.
var ErrMissingDestination = errors.New("ledger: transfer requires a destination store")

// ErrSameStore indicates a transfer whose source and destination match.
var ErrSameStore = errors.New("ledger: source and destination store must differ")

// ErrStockLevelNotFound indicates a missing store_products row.
var ErrStockLevelNotFound = errors.New("ledger: stock level not found")

// Valid reports whether the kind is one of the six enumerated values.
func (k Kind) Valid() bool {
	switch k {
	case KindSale, KindPurchase, KindTransfer, KindAdjustment, KindReturn, KindWaste:
		return true
	}
	return false
}

// Valid reports whether the status is an enumerated lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
