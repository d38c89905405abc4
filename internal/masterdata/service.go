package masterdata

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

// RepositoryPort abstracts master-data persistence.
type RepositoryPort interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, u User) (User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error

	ListStores(ctx context.Context) ([]Store, error)
	GetStore(ctx context.Context, id int64) (Store, error)
	CreateStore(ctx context.Context, s Store) (Store, error)
	UpdateStore(ctx context.Context, id int64, s Store) error

	ListCustomers(ctx context.Context) ([]Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	RecordCustomerPurchase(ctx context.Context, id int64, amount float64, at time.Time) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateSupplier(ctx context.Context, s Supplier) (Supplier, error)
	RecordSupplierOrder(ctx context.Context, id int64, at time.Time) error
}

// Service carries master-data business rules.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Authenticate validates email/password credentials and stamps the login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	if !user.Active {
		return User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("touch last login failed", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now
	return user, nil
}

// CreateUser hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, u User, password string) (User, error) {
	if !u.Role.Valid() {
		return User{}, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.PasswordHash = string(hash)
	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return User{}, err
	}
	s.logger.Info("user created", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// GetUser returns a user account by id.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers lists all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ListStores lists all retail locations.
func (s *Service) ListStores(ctx context.Context) ([]Store, error) {
	return s.repo.ListStores(ctx)
}

// GetStore returns a store by id.
func (s *Service) GetStore(ctx context.Context, id int64) (Store, error) {
	return s.repo.GetStore(ctx, id)
}

// CreateStore stores a new retail location.
func (s *Service) CreateStore(ctx context.Context, store Store) (Store, error) {
	store.Name = strings.TrimSpace(store.Name)
	if store.Currency == "" {
		store.Currency = "USD"
	}
	if store.Timezone == "" {
		store.Timezone = "UTC"
	}
	return s.repo.CreateStore(ctx, store)
}

// UpdateStore rewrites a retail location.
func (s *Service) UpdateStore(ctx context.Context, id int64, store Store) error {
	store.Name = strings.TrimSpace(store.Name)
	return s.repo.UpdateStore(ctx, id, store)
}

// ListCustomers lists all customers.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

// CreateCustomer stores a new customer, defaulting to the bronze tier.
func (s *Service) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Loyalty == "" {
		c.Loyalty = LoyaltyBronze
	}
	return s.repo.CreateCustomer(ctx, c)
}

// RecordCustomerPurchase bumps a customer's spend after a completed sale.
func (s *Service) RecordCustomerPurchase(ctx context.Context, id int64, amount float64) error {
	return s.repo.RecordCustomerPurchase(ctx, id, amount, time.Now().UTC())
}

// ListSuppliers lists all suppliers.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// CreateSupplier stores a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, sup Supplier) (Supplier, error) {
	sup.Name = strings.TrimSpace(sup.Name)
	return s.repo.CreateSupplier(ctx, sup)
}

// RecordSupplierOrder bumps a supplier's order counters after a purchase.
func (s *Service) RecordSupplierOrder(ctx context.Context, id int64) error {
	return s.repo.RecordSupplierOrder(ctx, id, time.Now().UTC())
}
