package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products   map[int64]Product
	categories map[int64]Category
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:   map[int64]Product{},
		categories: map[int64]Category{},
		nextID:     1,
	}
}

func (m *memoryRepo) ListProducts(_ context.Context, filters ListFilters) ([]Product, error) {
	out := []Product{}
	for _, p := range m.products {
		if filters.CategoryID != 0 && p.CategoryID != filters.CategoryID {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.Active != nil && p.Active != *filters.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryRepo) GetProduct(_ context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (m *memoryRepo) GetProductByBarcode(_ context.Context, barcode string) (Product, error) {
	for _, p := range m.products {
		if p.Barcode == barcode && p.Active {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

func (m *memoryRepo) CreateProduct(_ context.Context, p Product) (Product, error) {
	for _, existing := range m.products {
		if p.Barcode != "" && existing.Barcode == p.Barcode && existing.Active {
			return Product{}, ErrBarcodeTaken
		}
	}
	p.ID = m.nextID
	m.nextID++
	m.products[p.ID] = p
	return p, nil
}

func (m *memoryRepo) UpdateProduct(_ context.Context, id int64, p Product) error {
	if _, ok := m.products[id]; !ok {
		return ErrProductNotFound
	}
	p.ID = id
	m.products[id] = p
	return nil
}

func (m *memoryRepo) ListCategories(_ context.Context) ([]Category, error) {
	out := []Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) CreateCategory(_ context.Context, c Category) (Category, error) {
	c.ID = m.nextID
	m.nextID++
	m.categories[c.ID] = c
	return c, nil
}

func newTestService(repo RepositoryPort) *Service {
	return NewService(repo, nil)
}

func TestCreateProductRejectsDuplicateBarcode(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.CreateProduct(context.Background(), Product{Name: "Milk 1L", Barcode: "8991001", Active: true})
	require.NoError(t, err)

	_, err = svc.CreateProduct(context.Background(), Product{Name: "Milk 1L Promo", Barcode: "8991001", Active: true})
	require.ErrorIs(t, err, ErrBarcodeTaken)
}

func TestLookupBarcodeTrimsAndFinds(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	created, err := svc.CreateProduct(context.Background(), Product{Name: "Coffee Beans", Barcode: "5000123", Active: true})
	require.NoError(t, err)

	found, err := svc.LookupBarcode(context.Background(), "  5000123 ")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.LookupBarcode(context.Background(), "   ")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProductsFiltersBySearchAndActive(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.CreateProduct(context.Background(), Product{Name: "Green Tea", Active: true})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), Product{Name: "Black Tea", Active: false})
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), Product{Name: "Sparkling Water", Active: true})
	require.NoError(t, err)

	active := true
	products, err := svc.ListProducts(context.Background(), ListFilters{Search: "tea", Active: &active})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Green Tea", products[0].Name)
}
