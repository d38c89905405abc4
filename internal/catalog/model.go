package catalog

import (
	"errors"
	"time"
)

// Product represents a catalog product.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Barcode     string    `json:"barcode"`
	CategoryID  int64     `json:"categoryId"`
	Brand       string    `json:"brand"`
	Supplier    string    `json:"supplier"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Category groups products, optionally nested under a parent.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ParentID    int64     `json:"parentId,omitempty"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListFilters narrows product listings.
type ListFilters struct {
	CategoryID int64
	Search     string
	Active     *bool
	Limit      int
}

// ErrBarcodeTaken indicates the barcode is already used by an active product.
var ErrBarcodeTaken = errors.New("catalog: barcode already in use")

// ErrProductNotFound indicates a missing product row.
var ErrProductNotFound = errors.New("catalog: product not found")

// ErrCategoryNotFound indicates a missing category row.
var ErrCategoryNotFound = errors.New("catalog: category not found")
