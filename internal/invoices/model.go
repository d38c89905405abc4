package invoices

import (
	"errors"
	"time"
)

// Type distinguishes payables from receivables.
type Type string

const (
	TypeSupplier Type = "supplier"
	TypeClient   Type = "client"
)

// Valid reports whether the type is one of the known values.
func (t Type) Valid() bool {
	return t == TypeSupplier || t == TypeClient
}

// Status is an invoice lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusPartial   Status = "partial"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Item is one invoice line. Total is quantity*price minus the line discount.
type Item struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Total       float64 `json:"total"`
}

// Invoice is a client or supplier invoice with embedded line items.
type Invoice struct {
	ID             int64      `json:"id"`
	Type           Type       `json:"type"`
	Number         string     `json:"number"`
	StoreID        int64      `json:"storeId"`
	EntityID       int64      `json:"entityId"`
	EntityName     string     `json:"entityName"`
	EntityEmail    string     `json:"entityEmail,omitempty"`
	EntityPhone    string     `json:"entityPhone,omitempty"`
	EntityAddress  string     `json:"entityAddress,omitempty"`
	Items          []Item     `json:"items"`
	Subtotal       float64    `json:"subtotal"`
	TaxRate        float64    `json:"taxRate"`
	TaxAmount      float64    `json:"taxAmount"`
	DiscountRate   float64    `json:"discountRate"`
	DiscountAmount float64    `json:"discountAmount"`
	Total          float64    `json:"total"`
	Paid           float64    `json:"paid"`
	Balance        float64    `json:"balance"`
	Status         Status     `json:"status"`
	PaymentTerms   string     `json:"paymentTerms"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"createdAt"`
	DueDate        time.Time  `json:"dueDate"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
}

// ListFilters narrow invoice listings.
type ListFilters struct {
	Type    Type
	StoreID int64
	Status  Status
	Limit   int
}

var (
	ErrInvoiceNotFound   = errors.New("invoices: invoice not found")
	ErrNoItems           = errors.New("invoices: invoice has no items")
	ErrInvalidType       = errors.New("invoices: invalid invoice type")
	ErrInvalidPayment    = errors.New("invoices: payment amount must be positive")
	ErrInvoiceNotPayable = errors.New("invoices: invoice cannot accept payments in its current status")
	ErrOverpayment       = errors.New("invoices: payment exceeds outstanding balance")
	ErrInvalidTransition = errors.New("invoices: invalid status transition")
)
