package masterdata

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

// Repository persists master data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, store_access, active, created_at, last_login`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.StoreAccess, &u.Active, &u.CreatedAt, &u.LastLogin)
	return u, err
}

// FindUserByEmail fetches a user by email.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

// ListUsers lists all user accounts.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a user account.
func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, role, store_access, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.StoreAccess, u.Active, now).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	u.CreatedAt = now
	return u, nil
}

// TouchLastLogin stamps the user's last successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login=$1 WHERE id=$2`, at.UTC(), id)
	return err
}

const storeColumns = `id, name, address, phone, email, manager, currency, timezone, active, created_at`

func scanStore(row pgx.Row) (Store, error) {
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Email, &s.Manager, &s.Currency, &s.Timezone, &s.Active, &s.CreatedAt)
	return s, err
}

// ListStores lists all retail locations.
func (r *Repository) ListStores(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stores := []Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// GetStore fetches a store by id.
func (r *Repository) GetStore(ctx context.Context, id int64) (Store, error) {
	s, err := scanStore(r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Store{}, ErrStoreNotFound
		}
		return Store{}, err
	}
	return s, nil
}

// CreateStore inserts a retail location.
func (r *Repository) CreateStore(ctx context.Context, s Store) (Store, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO stores (name, address, phone, email, manager, currency, timezone, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		s.Name, s.Address, s.Phone, s.Email, s.Manager, s.Currency, s.Timezone, s.Active, now).Scan(&s.ID)
	if err != nil {
		return Store{}, err
	}
	s.CreatedAt = now
	return s, nil
}

// UpdateStore rewrites a store row.
func (r *Repository) UpdateStore(ctx context.Context, id int64, s Store) error {
	tag, err := r.pool.Exec(ctx, `UPDATE stores SET name=$1, address=$2, phone=$3, email=$4, manager=$5, currency=$6, timezone=$7, active=$8 WHERE id=$9`,
		s.Name, s.Address, s.Phone, s.Email, s.Manager, s.Currency, s.Timezone, s.Active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

const customerColumns = `id, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''), total_purchases, last_purchase, loyalty, active, created_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.TotalPurchases, &c.LastPurchase, &c.Loyalty, &c.Active, &c.CreatedAt)
	return c, err
}

// ListCustomers lists all customers.
func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	customers := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CreateCustomer inserts a customer.
func (r *Repository) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (name, email, phone, address, total_purchases, loyalty, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address), c.TotalPurchases, c.Loyalty, c.Active, now).Scan(&c.ID)
	if err != nil {
		return Customer{}, err
	}
	c.CreatedAt = now
	return c, nil
}

// RecordCustomerPurchase bumps the customer's running spend and purchase stamp.
func (r *Repository) RecordCustomerPurchase(ctx context.Context, id int64, amount float64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET total_purchases = total_purchases + $1, last_purchase=$2 WHERE id=$3`,
		amount, at.UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

const supplierColumns = `id, name, email, phone, address, contact_person, payment_terms, active, total_orders, last_order, created_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.ContactPerson, &s.PaymentTerms, &s.Active, &s.TotalOrders, &s.LastOrder, &s.CreatedAt)
	return s, err
}

// ListSuppliers lists all suppliers.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	suppliers := []Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// CreateSupplier inserts a supplier.
func (r *Repository) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (name, email, phone, address, contact_person, payment_terms, active, total_orders, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		s.Name, s.Email, s.Phone, s.Address, s.ContactPerson, s.PaymentTerms, s.Active, s.TotalOrders, now).Scan(&s.ID)
	if err != nil {
		return Supplier{}, err
	}
	s.CreatedAt = now
	return s, nil
}

// RecordSupplierOrder bumps the supplier's order counters.
func (r *Repository) RecordSupplierOrder(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET total_orders = total_orders + 1, last_order=$1 WHERE id=$2`, at.UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSupplierNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
