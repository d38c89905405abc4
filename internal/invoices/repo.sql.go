package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists invoices in PostgreSQL. Line items live in a jsonb
// column, matching the document shape the dashboard renders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const invoiceColumns = `id, type, number, store_id, entity_id, entity_name,
COALESCE(entity_email,''), COALESCE(entity_phone,''), COALESCE(entity_address,''),
items, subtotal, tax_rate, tax_amount, discount_rate, discount_amount,
total, paid, balance, status, payment_terms, notes, created_at, due_date, paid_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var items []byte
	err := row.Scan(&inv.ID, &inv.Type, &inv.Number, &inv.StoreID, &inv.EntityID, &inv.EntityName,
		&inv.EntityEmail, &inv.EntityPhone, &inv.EntityAddress,
		&items, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.DiscountRate, &inv.DiscountAmount,
		&inv.Total, &inv.Paid, &inv.Balance, &inv.Status, &inv.PaymentTerms, &inv.Notes,
		&inv.CreatedAt, &inv.DueDate, &inv.PaidAt)
	if err != nil {
		return Invoice{}, err
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

// List returns invoices matching the filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Type != "" {
		argCount++
		query += ` AND type = $` + strconv.Itoa(argCount)
		args = append(args, filters.Type)
	}
	if filters.StoreID != 0 {
		argCount++
		query += ` AND store_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.StoreID)
	}
	if filters.Status != "" {
		argCount++
		query += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}

	query += ` ORDER BY created_at DESC`
	limit := filters.Limit
	if limit <= 0 {
		limit = 200
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Get returns one invoice by id.
func (r *Repository) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrInvoiceNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}

// Insert stores a new invoice and returns its id.
func (r *Repository) Insert(ctx context.Context, inv Invoice) (int64, error) {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `INSERT INTO invoices
(type, number, store_id, entity_id, entity_name, entity_email, entity_phone, entity_address,
 items, subtotal, tax_rate, tax_amount, discount_rate, discount_amount,
 total, paid, balance, status, payment_terms, notes, created_at, due_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
RETURNING id`,
		inv.Type, inv.Number, inv.StoreID, inv.EntityID, inv.EntityName,
		nullString(inv.EntityEmail), nullString(inv.EntityPhone), nullString(inv.EntityAddress),
		items, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.DiscountRate, inv.DiscountAmount,
		inv.Total, inv.Paid, inv.Balance, inv.Status, inv.PaymentTerms, inv.Notes,
		inv.CreatedAt, inv.DueDate).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdatePayment rewrites the payment columns after a payment or status change.
func (r *Repository) UpdatePayment(ctx context.Context, id int64, paid, balance float64, status Status, paidAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET paid=$1, balance=$2, status=$3, paid_at=$4 WHERE id=$5`,
		paid, balance, status, paidAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// UpdateStatus rewrites only the lifecycle state.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invoices SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// CountForMonth returns how many invoices were issued in the month holding t,
// used for sequential invoice numbering.
func (r *Repository) CountForMonth(ctx context.Context, t time.Time) (int64, error) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE created_at >= $1 AND created_at < $2`, start, end).Scan(&count)
	return count, err
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
