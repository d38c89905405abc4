package state

import (
	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
)

type seedUser struct {
	user     masterdata.User
	password string
}

type seedProduct struct {
	product  catalog.Product
	category string
	level    ledger.StockLevel
}

var seedUsers = []seedUser{
	{
		user: masterdata.User{
			Name:   "John Admin",
			Email:  "admin@store.com",
			Role:   masterdata.RoleAdmin,
			Active: true,
		},
		password: "admin123",
	},
	{
		user: masterdata.User{
			Name:   "Sarah Manager",
			Email:  "manager@store.com",
			Role:   masterdata.RoleManager,
			Active: true,
		},
		password: "manager123",
	},
	{
		user: masterdata.User{
			Name:   "Mike Cashier",
			Email:  "cashier@store.com",
			Role:   masterdata.RoleCashier,
			Active: true,
		},
		password: "cashier123",
	},
}

var seedStores = []masterdata.Store{
	{
		Name:     "Main Store Downtown",
		Address:  "123 Main St, Downtown",
		Phone:    "+1-555-0123",
		Email:    "main@store.com",
		Manager:  "Sarah Manager",
		Currency: "USD",
		Timezone: "America/New_York",
		Active:   true,
	},
	{
		Name:     "Branch Store Mall",
		Address:  "456 Mall Ave, Shopping Center",
		Phone:    "+1-555-0124",
		Email:    "branch@store.com",
		Manager:  "John Admin",
		Currency: "USD",
		Timezone: "America/New_York",
		Active:   true,
	},
}

var seedCategories = []catalog.Category{
	{Name: "Beverages", Description: "Drinks, juices and water", Active: true},
	{Name: "Snacks", Description: "Chips, candy and bars", Active: true},
	{Name: "Household", Description: "Cleaning and paper goods", Active: true},
}

var seedProducts = []seedProduct{
	{
		product:  catalog.Product{Name: "Sparkling Water 500ml", Barcode: "0490001001", Brand: "AquaFizz", Active: true},
		category: "Beverages",
		level:    ledger.StockLevel{Stock: 120, MinStock: 24, MaxStock: 240, PurchasePrice: 0.45, SellingPrice: 1.25},
	},
	{
		product:  catalog.Product{Name: "Orange Juice 1L", Barcode: "0490001002", Brand: "SunGrove", Active: true},
		category: "Beverages",
		level:    ledger.StockLevel{Stock: 60, MinStock: 12, MaxStock: 120, PurchasePrice: 1.80, SellingPrice: 3.49},
	},
	{
		product:  catalog.Product{Name: "Sea Salt Chips 150g", Barcode: "0490002001", Brand: "CrispCo", Active: true},
		category: "Snacks",
		level:    ledger.StockLevel{Stock: 80, MinStock: 16, MaxStock: 160, PurchasePrice: 0.90, SellingPrice: 2.19},
	},
	{
		product:  catalog.Product{Name: "Chocolate Bar 45g", Barcode: "0490002002", Brand: "Cocoaline", Active: true},
		category: "Snacks",
		level:    ledger.StockLevel{Stock: 200, MinStock: 40, MaxStock: 400, PurchasePrice: 0.55, SellingPrice: 1.49},
	},
	{
		product:  catalog.Product{Name: "Paper Towels 2pk", Barcode: "0490003001", Brand: "HomePly", Active: true},
		category: "Household",
		level:    ledger.StockLevel{Stock: 40, MinStock: 10, MaxStock: 80, PurchasePrice: 1.60, SellingPrice: 3.99},
	},
}

var seedCustomers = []masterdata.Customer{
	{Name: "Alice Johnson", Email: "alice@example.com", Phone: "+1-555-0201", Loyalty: masterdata.LoyaltyGold, Active: true},
	{Name: "Bob Martinez", Phone: "+1-555-0202", Loyalty: masterdata.LoyaltyBronze, Active: true},
}

var seedSuppliers = []masterdata.Supplier{
	{
		Name:          "Fresh Foods Distribution",
		Email:         "orders@freshfoods.example.com",
		Phone:         "+1-555-0301",
		ContactPerson: "Dan Wholesale",
		PaymentTerms:  "Net 30",
		Active:        true,
	},
	{
		Name:          "Metro Household Supply",
		Email:         "sales@metrohousehold.example.com",
		Phone:         "+1-555-0302",
		ContactPerson: "Priya Sales",
		PaymentTerms:  "Net 14",
		Active:        true,
	},
}
