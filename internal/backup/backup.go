package backup

import (
	"time"

	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/invoices"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
)

// UserRecord is a user as it appears in a backup document. Unlike the API
// representation it carries the password hash, so restored accounts keep
// their credentials.
type UserRecord struct {
	masterdata.User
	PasswordHash string `json:"passwordHash"`
}

// Document is the full-database backup payload. Its collection names match
// what the dashboard's export screen produces and accepts.
type Document struct {
	Users         []UserRecord          `json:"users"`
	Stores        []masterdata.Store    `json:"stores"`
	Products      []catalog.Product     `json:"products"`
	Categories    []catalog.Category    `json:"categories"`
	StoreProducts []ledger.StockLevel   `json:"storeProducts"`
	Transactions  []ledger.Transaction  `json:"transactions"`
	Invoices      []invoices.Invoice    `json:"invoices"`
	Customers     []masterdata.Customer `json:"customers"`
	Suppliers     []masterdata.Supplier `json:"suppliers"`
	ExportDate    time.Time             `json:"exportDate"`
}
