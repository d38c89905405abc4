package masterdata

import (
	"errors"
	"time"
)

// Role controls which parts of the dashboard a user may reach.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleViewer  Role = "viewer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier, RoleViewer:
		return true
	}
	return false
}

// LoyaltyTier ranks customers by cumulative spend.
type LoyaltyTier string

const (
	LoyaltyBronze   LoyaltyTier = "bronze"
	LoyaltySilver   LoyaltyTier = "silver"
	LoyaltyGold     LoyaltyTier = "gold"
	LoyaltyPlatinum LoyaltyTier = "platinum"
)

// User is a dashboard account. PasswordHash never leaves the server.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	StoreAccess  []int64    `json:"storeAccess"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// Store is a retail location.
type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Manager   string    `json:"manager"`
	Currency  string    `json:"currency"`
	Timezone  string    `json:"timezone"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Customer is a repeat buyer tracked for loyalty.
type Customer struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	Address        string      `json:"address,omitempty"`
	TotalPurchases float64     `json:"totalPurchases"`
	LastPurchase   *time.Time  `json:"lastPurchase,omitempty"`
	Loyalty        LoyaltyTier `json:"loyalty"`
	Active         bool        `json:"active"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Supplier is a purchasing counterparty.
type Supplier struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	ContactPerson string     `json:"contactPerson"`
	PaymentTerms  string     `json:"paymentTerms"`
	Active        bool       `json:"active"`
	TotalOrders   int64      `json:"totalOrders"`
	LastOrder     *time.Time `json:"lastOrder,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

var (
	ErrUserNotFound     = errors.New("masterdata: user not found")
	ErrStoreNotFound    = errors.New("masterdata: store not found")
	ErrCustomerNotFound = errors.New("masterdata: customer not found")
	ErrSupplierNotFound = errors.New("masterdata: supplier not found")
	ErrEmailTaken       = errors.New("masterdata: email already registered")
	ErrInvalidRole      = errors.New("masterdata: invalid role")
)
