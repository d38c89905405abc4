package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	InsertTransaction(ctx context.Context, record Transaction) (int64, error)
	GetStockLevelForUpdate(ctx context.Context, productID, storeID int64) (StockLevel, error)
	UpdateStockLevel(ctx context.Context, id, stock, updatedBy int64, at time.Time) error
	InsertMovement(ctx context.Context, movement StockMovement) (int64, error)
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const stockLevelColumns = `id, product_id, store_id, stock, min_stock, max_stock, purchase_price, selling_price, last_updated, updated_by`

func scanStockLevel(row pgx.Row) (StockLevel, error) {
	var level StockLevel
	err := row.Scan(&level.ID, &level.ProductID, &level.StoreID, &level.Stock, &level.MinStock, &level.MaxStock, &level.PurchasePrice, &level.SellingPrice, &level.LastUpdated, &level.UpdatedBy)
	return level, err
}

// GetStockLevel returns the stock row for a (product, store) pair.
func (r *Repository) GetStockLevel(ctx context.Context, productID, storeID int64) (StockLevel, error) {
	level, err := scanStockLevel(r.pool.QueryRow(ctx, `SELECT `+stockLevelColumns+` FROM store_products WHERE product_id=$1 AND store_id=$2`, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockLevel{}, ErrStockLevelNotFound
		}
		return StockLevel{}, err
	}
	return level, nil
}

// ListStockLevels lists stock rows; storeID zero returns all stores.
func (r *Repository) ListStockLevels(ctx context.Context, storeID int64) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+stockLevelColumns+` FROM store_products WHERE ($1 = 0 OR store_id = $1) ORDER BY store_id, product_id`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	levels := []StockLevel{}
	for rows.Next() {
		level, err := scanStockLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

// ListLowStockLevels returns rows at or below their minimum stock.
func (r *Repository) ListLowStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+stockLevelColumns+` FROM store_products WHERE stock <= min_stock ORDER BY store_id, product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	levels := []StockLevel{}
	for rows.Next() {
		level, err := scanStockLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

// UpsertStockLevel creates or reconfigures a (product, store) stock row.
// The stock counter is only taken from the input on first insert; existing
// rows change stock exclusively through Apply.
func (r *Repository) UpsertStockLevel(ctx context.Context, level StockLevel) (StockLevel, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO store_products (product_id, store_id, stock, min_stock, max_stock, purchase_price, selling_price, last_updated, updated_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (product_id, store_id) DO UPDATE SET
	min_stock=EXCLUDED.min_stock,
	max_stock=EXCLUDED.max_stock,
	purchase_price=EXCLUDED.purchase_price,
	selling_price=EXCLUDED.selling_price,
	last_updated=EXCLUDED.last_updated,
	updated_by=EXCLUDED.updated_by
RETURNING `+stockLevelColumns,
		level.ProductID, level.StoreID, level.Stock, level.MinStock, level.MaxStock,
		level.PurchasePrice, level.SellingPrice, time.Now().UTC(), level.UpdatedBy)
	return scanStockLevel(row)
}

// ListMovements lists the audit trail, newest first.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, store_id, transaction_id, direction, quantity, previous_stock, new_stock, reason, user_id, created_at
FROM stock_movements
WHERE ($1 = 0 OR product_id = $1)
  AND ($2 = 0 OR store_id = $2)
  AND created_at BETWEEN COALESCE($3, '-infinity') AND COALESCE($4, 'infinity')
ORDER BY created_at DESC, id DESC
LIMIT $5`, filter.ProductID, filter.StoreID, nullTime(filter.From), nullTime(filter.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []StockMovement{}
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.StoreID, &m.TransactionID, &m.Direction, &m.Quantity, &m.PreviousStock, &m.NewStock, &m.Reason, &m.UserID, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListTransactions lists transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT id, kind, product_id, store_id, COALESCE(to_store_id, 0), quantity, price, total, user_id, COALESCE(customer_id, 0), COALESCE(supplier_id, 0), COALESCE(invoice_id, 0), COALESCE(ref_id::text, ''), notes, status, created_at
FROM transactions
WHERE ($1 = 0 OR store_id = $1)
  AND ($2 = '' OR kind = $2)
  AND ($3 = '' OR status = $3)
ORDER BY created_at DESC, id DESC
LIMIT $4`, filter.StoreID, string(filter.Kind), string(filter.Status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	transactions := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Kind, &t.ProductID, &t.StoreID, &t.ToStoreID, &t.Quantity, &t.Price, &t.Total, &t.UserID, &t.CustomerID, &t.SupplierID, &t.InvoiceID, &t.RefID, &t.Notes, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *txRepository) InsertTransaction(ctx context.Context, record Transaction) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO transactions (kind, product_id, store_id, to_store_id, quantity, price, total, user_id, customer_id, supplier_id, invoice_id, ref_id, notes, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15) RETURNING id`,
		string(record.Kind), record.ProductID, record.StoreID, nullInt(record.ToStoreID), record.Quantity, record.Price, record.Total, record.UserID,
		nullInt(record.CustomerID), nullInt(record.SupplierID), nullInt(record.InvoiceID), nullUUID(record.RefID), record.Notes, string(record.Status), record.CreatedAt).Scan(&id)
	return id, err
}

func (r *txRepository) GetStockLevelForUpdate(ctx context.Context, productID, storeID int64) (StockLevel, error) {
	level, err := scanStockLevel(r.tx.QueryRow(ctx, `SELECT `+stockLevelColumns+` FROM store_products WHERE product_id=$1 AND store_id=$2 FOR UPDATE`, productID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockLevel{}, ErrStockLevelNotFound
		}
		return StockLevel{}, err
	}
	return level, nil
}

func (r *txRepository) UpdateStockLevel(ctx context.Context, id, stock, updatedBy int64, at time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE store_products SET stock=$2, last_updated=$3, updated_by=$4 WHERE id=$1`, id, stock, at, updatedBy)
	return err
}

func (r *txRepository) InsertMovement(ctx context.Context, movement StockMovement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements (product_id, store_id, transaction_id, direction, quantity, previous_stock, new_stock, reason, user_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		movement.ProductID, movement.StoreID, movement.TransactionID, string(movement.Direction), movement.Quantity, movement.PreviousStock, movement.NewStock, movement.Reason, movement.UserID, movement.CreatedAt).Scan(&id)
	return id, err
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullUUID(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
