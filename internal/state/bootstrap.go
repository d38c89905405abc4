package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
)

// Seeder populates an empty database with a working demo dataset so a fresh
// install boots straight into a usable dashboard.
type Seeder struct {
	master  *masterdata.Service
	catalog *catalog.Service
	ledger  *ledger.Service
	logger  *slog.Logger
}

// NewSeeder constructs Seeder.
func NewSeeder(master *masterdata.Service, cat *catalog.Service, led *ledger.Service, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{master: master, catalog: cat, ledger: led, logger: logger}
}

// Run seeds demo data when no user accounts exist yet. A populated database
// is left untouched.
func (s *Seeder) Run(ctx context.Context) error {
	users, err := s.master.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("seed: list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}
	s.logger.Info("empty database detected, seeding demo data")

	storeIDs := make([]int64, 0, len(seedStores))
	for _, store := range seedStores {
		created, err := s.master.CreateStore(ctx, store)
		if err != nil {
			return fmt.Errorf("seed: store %s: %w", store.Name, err)
		}
		storeIDs = append(storeIDs, created.ID)
	}

	for i, u := range seedUsers {
		user := u.user
		if i == 0 {
			user.StoreAccess = storeIDs
		} else if len(storeIDs) > 0 {
			user.StoreAccess = storeIDs[:1]
		}
		if _, err := s.master.CreateUser(ctx, user, u.password); err != nil {
			return fmt.Errorf("seed: user %s: %w", user.Email, err)
		}
	}

	categoryIDs := map[string]int64{}
	for _, c := range seedCategories {
		created, err := s.catalog.CreateCategory(ctx, c)
		if err != nil {
			return fmt.Errorf("seed: category %s: %w", c.Name, err)
		}
		categoryIDs[c.Name] = created.ID
	}

	for _, p := range seedProducts {
		product := p.product
		product.CategoryID = categoryIDs[p.category]
		created, err := s.catalog.CreateProduct(ctx, product)
		if err != nil {
			return fmt.Errorf("seed: product %s: %w", product.Name, err)
		}
		for i, storeID := range storeIDs {
			level := p.level
			level.ProductID = created.ID
			level.StoreID = storeID
			if i > 0 {
				// branch stores start with half the main store's stock
				level.Stock /= 2
			}
			if _, err := s.ledger.SetStockLevel(ctx, level); err != nil {
				return fmt.Errorf("seed: stock for %s: %w", product.Name, err)
			}
		}
	}

	for _, c := range seedCustomers {
		if _, err := s.master.CreateCustomer(ctx, c); err != nil {
			return fmt.Errorf("seed: customer %s: %w", c.Name, err)
		}
	}
	for _, sup := range seedSuppliers {
		if _, err := s.master.CreateSupplier(ctx, sup); err != nil {
			return fmt.Errorf("seed: supplier %s: %w", sup.Name, err)
		}
	}

	s.logger.Info("demo data seeded",
		"users", len(seedUsers),
		"stores", len(seedStores),
		"products", len(seedProducts))
	return nil
}
