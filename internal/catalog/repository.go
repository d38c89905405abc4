package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

// Repository persists catalog data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, description, barcode, COALESCE(category_id, 0), brand, supplier, active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Barcode, &p.CategoryID, &p.Brand, &p.Supplier, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProducts lists products with optional filters.
func (r *Repository) ListProducts(ctx context.Context, filters ListFilters) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.CategoryID != 0 {
		argCount++
		query += ` AND category_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.CategoryID)
	}
	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR barcode ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Active != nil {
		argCount++
		query += ` AND active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.Active)
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct returns one product by id.
func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// GetProductByBarcode returns the active product carrying the barcode.
func (r *Repository) GetProductByBarcode(ctx context.Context, barcode string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode=$1 AND active=true`, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// ProductName resolves a product name, used for notification messages.
func (r *Repository) ProductName(ctx context.Context, productID int64) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM products WHERE id=$1`, productID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return name, nil
}

// CreateProduct inserts a product. A duplicate active barcode maps to ErrBarcodeTaken.
func (r *Repository) CreateProduct(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO products (name, description, barcode, category_id, brand, supplier, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8) RETURNING id`,
		p.Name, p.Description, p.Barcode, nullInt(p.CategoryID), p.Brand, p.Supplier, p.Active, now).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrBarcodeTaken
		}
		return Product{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

// UpdateProduct rewrites a product row.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, p Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name=$1, description=$2, barcode=$3, category_id=$4, brand=$5, supplier=$6, active=$7, updated_at=$8 WHERE id=$9`,
		p.Name, p.Description, p.Barcode, nullInt(p.CategoryID), p.Brand, p.Supplier, p.Active, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBarcodeTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

const categoryColumns = `id, name, COALESCE(parent_id, 0), description, active, created_at`

// ListCategories lists all categories.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.Description, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (name, parent_id, description, active, created_at) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		c.Name, nullInt(c.ParentID), c.Description, c.Active, now).Scan(&c.ID)
	if err != nil {
		return Category{}, err
	}
	c.CreatedAt = now
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
