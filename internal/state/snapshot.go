package state

import (
	"time"

	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
	"github.com/stockroom-pos/stockroom/internal/notify"
)

// Snapshot is an immutable view of every collection the dashboard renders.
// The facade swaps the whole snapshot on refresh; readers never see a
// half-updated mix of collections.
type Snapshot struct {
	Stores        []masterdata.Store    `json:"stores"`
	Products      []catalog.Product     `json:"products"`
	Categories    []catalog.Category    `json:"categories"`
	StockLevels   []ledger.StockLevel   `json:"storeProducts"`
	Transactions  []ledger.Transaction  `json:"transactions"`
	Customers     []masterdata.Customer `json:"customers"`
	Suppliers     []masterdata.Supplier `json:"suppliers"`
	Notifications []notify.Notification `json:"notifications"`
	RefreshedAt   time.Time             `json:"refreshedAt"`
}
