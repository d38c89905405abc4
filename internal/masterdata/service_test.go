package masterdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

type memoryRepo struct {
	users     map[int64]User
	stores    map[int64]Store
	customers map[int64]Customer
	suppliers map[int64]Supplier
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:     map[int64]User{},
		stores:    map[int64]Store{},
		customers: map[int64]Customer{},
		suppliers: map[int64]Supplier{},
		nextID:    1,
	}
}

func (m *memoryRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memoryRepo) FindUserByEmail(_ context.Context, email string) (User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (m *memoryRepo) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memoryRepo) ListUsers(_ context.Context) ([]User, error) {
	out := []User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) CreateUser(_ context.Context, u User) (User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailTaken
		}
	}
	u.ID = m.id()
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLogin = &at
	m.users[id] = u
	return nil
}

func (m *memoryRepo) ListStores(_ context.Context) ([]Store, error) {
	out := []Store{}
	for _, s := range m.stores {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryRepo) GetStore(_ context.Context, id int64) (Store, error) {
	s, ok := m.stores[id]
	if !ok {
		return Store{}, ErrStoreNotFound
	}
	return s, nil
}

func (m *memoryRepo) CreateStore(_ context.Context, s Store) (Store, error) {
	s.ID = m.id()
	m.stores[s.ID] = s
	return s, nil
}

func (m *memoryRepo) UpdateStore(_ context.Context, id int64, s Store) error {
	if _, ok := m.stores[id]; !ok {
		return ErrStoreNotFound
	}
	s.ID = id
	m.stores[id] = s
	return nil
}

func (m *memoryRepo) ListCustomers(_ context.Context) ([]Customer, error) {
	out := []Customer{}
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) CreateCustomer(_ context.Context, c Customer) (Customer, error) {
	c.ID = m.id()
	m.customers[c.ID] = c
	return c, nil
}

func (m *memoryRepo) RecordCustomerPurchase(_ context.Context, id int64, amount float64, at time.Time) error {
	c, ok := m.customers[id]
	if !ok {
		return ErrCustomerNotFound
	}
	c.TotalPurchases += amount
	c.LastPurchase = &at
	m.customers[id] = c
	return nil
}

func (m *memoryRepo) ListSuppliers(_ context.Context) ([]Supplier, error) {
	out := []Supplier{}
	for _, s := range m.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryRepo) CreateSupplier(_ context.Context, s Supplier) (Supplier, error) {
	s.ID = m.id()
	m.suppliers[s.ID] = s
	return s, nil
}

func (m *memoryRepo) RecordSupplierOrder(_ context.Context, id int64, at time.Time) error {
	s, ok := m.suppliers[id]
	if !ok {
		return ErrSupplierNotFound
	}
	s.TotalOrders++
	s.LastOrder = &at
	m.suppliers[id] = s
	return nil
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	created, err := svc.CreateUser(context.Background(), User{
		Name:   "Dana Reyes",
		Email:  "Dana@Example.com",
		Role:   RoleManager,
		Active: true,
	}, "correct horse battery")
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", created.Email)
	require.NotEmpty(t, created.PasswordHash)

	user, err := svc.Authenticate(context.Background(), " dana@example.com ", "correct horse battery")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)
	require.NotNil(t, user.LastLogin)

	_, err = svc.Authenticate(context.Background(), "dana@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUserRejected(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateUser(context.Background(), User{
		Name:   "Former Staff",
		Email:  "gone@example.com",
		Role:   RoleCashier,
		Active: false,
	}, "old password")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "gone@example.com", "old password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateUser(context.Background(), User{
		Name:  "Eve",
		Email: "eve@example.com",
		Role:  Role("superuser"),
	}, "password123")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateStoreDefaults(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	store, err := svc.CreateStore(context.Background(), Store{Name: "  Downtown  ", Active: true})
	require.NoError(t, err)
	require.Equal(t, "Downtown", store.Name)
	require.Equal(t, "USD", store.Currency)
	require.Equal(t, "UTC", store.Timezone)
}

func TestCustomerPurchaseAccumulates(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	customer, err := svc.CreateCustomer(context.Background(), Customer{Name: "Walk In", Active: true})
	require.NoError(t, err)
	require.Equal(t, LoyaltyBronze, customer.Loyalty)

	require.NoError(t, svc.RecordCustomerPurchase(context.Background(), customer.ID, 120.50))
	require.NoError(t, svc.RecordCustomerPurchase(context.Background(), customer.ID, 30.25))

	customers, err := svc.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.InDelta(t, 150.75, customers[0].TotalPurchases, 0.001)
	require.NotNil(t, customers[0].LastPurchase)
}
