package notify

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists notifications in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificationColumns = `id, kind, title, message, read, COALESCE(user_id, 0), COALESCE(store_id, 0), product_id, current_stock, min_stock, transaction_id, amount, created_at`

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	var productID, currentStock, minStock, transactionID *int64
	var amount *float64
	err := row.Scan(&n.ID, &n.Kind, &n.Title, &n.Message, &n.Read, &n.UserID, &n.StoreID, &productID, &currentStock, &minStock, &transactionID, &amount, &n.CreatedAt)
	if err != nil {
		return Notification{}, err
	}
	if productID != nil {
		n.LowStock = &LowStockPayload{ProductID: *productID}
		if currentStock != nil {
			n.LowStock.CurrentStock = *currentStock
		}
		if minStock != nil {
			n.LowStock.MinStock = *minStock
		}
	}
	if transactionID != nil {
		n.Transaction = &TransactionPayload{TransactionID: *transactionID}
		if amount != nil {
			n.Transaction.Amount = *amount
		}
	}
	return n, nil
}

// Insert appends a notification row. Unread warnings are guarded by a
// partial unique index on product_id, so a duplicate raised concurrently
// lands on DO NOTHING; id 0 reports that outcome.
func (r *Repository) Insert(ctx context.Context, n Notification) (int64, error) {
	var productID, currentStock, minStock, transactionID any
	var amount any
	if n.LowStock != nil {
		productID = n.LowStock.ProductID
		currentStock = n.LowStock.CurrentStock
		minStock = n.LowStock.MinStock
	}
	if n.Transaction != nil {
		transactionID = n.Transaction.TransactionID
		amount = n.Transaction.Amount
	}

	query := `INSERT INTO notifications (kind, title, message, read, user_id, store_id, product_id, current_stock, min_stock, transaction_id, amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) RETURNING id`
	if n.Kind == KindWarning && n.LowStock != nil && !n.Read {
		query = `INSERT INTO notifications (kind, title, message, read, user_id, store_id, product_id, current_stock, min_stock, transaction_id, amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (product_id) WHERE kind = 'warning' AND read = FALSE DO NOTHING
RETURNING id`
	}

	var id int64
	err := r.pool.QueryRow(ctx, query,
		string(n.Kind), n.Title, n.Message, n.Read, nullInt(n.UserID), nullInt(n.StoreID), productID, currentStock, minStock, transactionID, amount, n.CreatedAt).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// HasUnreadLowStock reports whether an unread warning already references the product.
func (r *Repository) HasUnreadLowStock(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE kind='warning' AND read=false AND product_id=$1)`, productID).Scan(&exists)
	return exists, err
}

// ListUnread returns unread rows visible to the user/store, newest first.
func (r *Repository) ListUnread(ctx context.Context, userID, storeID int64) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+notificationColumns+` FROM notifications
WHERE read=false
  AND ($1 = 0 OR user_id IS NULL OR user_id = $1)
  AND ($2 = 0 OR store_id IS NULL OR store_id = $2)
ORDER BY created_at DESC, id DESC`, userID, storeID)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

// List returns recent rows, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT `+notificationColumns+` FROM notifications ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectNotifications(rows)
}

// MarkRead flips the read flag on one row.
func (r *Repository) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET read=true WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func collectNotifications(rows pgx.Rows) ([]Notification, error) {
	defer rows.Close()
	notifications := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
