package backup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/invoices"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
	platformdb "github.com/stockroom-pos/stockroom/internal/platform/db"
)

// Repository moves whole collections in and out of PostgreSQL for backups.
// Import replaces everything in one transaction, so a half-loaded document
// never becomes visible.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// backedTables lists the collections a backup covers, in dependency order.
// Notifications and stock movements are deliberately not part of backups;
// they are derived records.
var backedTables = []string{
	"users", "stores", "categories", "products", "store_products",
	"transactions", "invoices", "customers", "suppliers",
}

// ExportAll reads every backed collection.
func (r *Repository) ExportAll(ctx context.Context) (Document, error) {
	doc := Document{ExportDate: time.Now().UTC()}

	var err error
	if doc.Users, err = r.exportUsers(ctx); err != nil {
		return Document{}, err
	}
	if doc.Stores, err = r.exportStores(ctx); err != nil {
		return Document{}, err
	}
	if doc.Categories, err = r.exportCategories(ctx); err != nil {
		return Document{}, err
	}
	if doc.Products, err = r.exportProducts(ctx); err != nil {
		return Document{}, err
	}
	if doc.StoreProducts, err = r.exportStockLevels(ctx); err != nil {
		return Document{}, err
	}
	if doc.Transactions, err = r.exportTransactions(ctx); err != nil {
		return Document{}, err
	}
	if doc.Invoices, err = r.exportInvoices(ctx); err != nil {
		return Document{}, err
	}
	if doc.Customers, err = r.exportCustomers(ctx); err != nil {
		return Document{}, err
	}
	if doc.Suppliers, err = r.exportSuppliers(ctx); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ImportAll clears every backed collection and loads the document in its
// place, keeping the original row ids.
func (r *Repository) ImportAll(ctx context.Context, doc Document) error {
	return platformdb.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i := len(backedTables) - 1; i >= 0; i-- {
			if _, err := tx.Exec(ctx, `DELETE FROM `+backedTables[i]); err != nil {
				return err
			}
		}

		for _, u := range doc.Users {
			if _, err := tx.Exec(ctx, `INSERT INTO users (id, name, email, password_hash, role, store_access, active, created_at, last_login)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.StoreAccess, u.Active, u.CreatedAt, u.LastLogin); err != nil {
				return err
			}
		}
		for _, s := range doc.Stores {
			if _, err := tx.Exec(ctx, `INSERT INTO stores (id, name, address, phone, email, manager, currency, timezone, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				s.ID, s.Name, s.Address, s.Phone, s.Email, s.Manager, s.Currency, s.Timezone, s.Active, s.CreatedAt); err != nil {
				return err
			}
		}
		for _, c := range doc.Categories {
			if _, err := tx.Exec(ctx, `INSERT INTO categories (id, name, parent_id, description, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
				c.ID, c.Name, nullInt(c.ParentID), c.Description, c.Active, c.CreatedAt); err != nil {
				return err
			}
		}
		for _, p := range doc.Products {
			if _, err := tx.Exec(ctx, `INSERT INTO products (id, name, description, barcode, category_id, brand, supplier, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				p.ID, p.Name, p.Description, p.Barcode, nullInt(p.CategoryID), p.Brand, p.Supplier, p.Active, p.CreatedAt, p.UpdatedAt); err != nil {
				return err
			}
		}
		for _, sp := range doc.StoreProducts {
			if _, err := tx.Exec(ctx, `INSERT INTO store_products (id, product_id, store_id, stock, min_stock, max_stock, purchase_price, selling_price, last_updated, updated_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				sp.ID, sp.ProductID, sp.StoreID, sp.Stock, sp.MinStock, sp.MaxStock, sp.PurchasePrice, sp.SellingPrice, sp.LastUpdated, sp.UpdatedBy); err != nil {
				return err
			}
		}
		for _, t := range doc.Transactions {
			if _, err := tx.Exec(ctx, `INSERT INTO transactions (id, kind, product_id, store_id, to_store_id, quantity, price, total, user_id, customer_id, supplier_id, invoice_id, ref_id, notes, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
				t.ID, t.Kind, t.ProductID, t.StoreID, nullInt(t.ToStoreID), t.Quantity, t.Price, t.Total, t.UserID,
				nullInt(t.CustomerID), nullInt(t.SupplierID), nullInt(t.InvoiceID), nullString(t.RefID), t.Notes, t.Status, t.CreatedAt); err != nil {
				return err
			}
		}
		for _, inv := range doc.Invoices {
			items, err := json.Marshal(inv.Items)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `INSERT INTO invoices
(id, type, number, store_id, entity_id, entity_name, entity_email, entity_phone, entity_address,
 items, subtotal, tax_rate, tax_amount, discount_rate, discount_amount,
 total, paid, balance, status, payment_terms, notes, created_at, due_date, paid_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
				inv.ID, inv.Type, inv.Number, inv.StoreID, inv.EntityID, inv.EntityName,
				nullString(inv.EntityEmail), nullString(inv.EntityPhone), nullString(inv.EntityAddress),
				items, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.DiscountRate, inv.DiscountAmount,
				inv.Total, inv.Paid, inv.Balance, inv.Status, inv.PaymentTerms, inv.Notes,
				inv.CreatedAt, inv.DueDate, inv.PaidAt); err != nil {
				return err
			}
		}
		for _, c := range doc.Customers {
			if _, err := tx.Exec(ctx, `INSERT INTO customers (id, name, email, phone, address, total_purchases, last_purchase, loyalty, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				c.ID, c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.Address),
				c.TotalPurchases, c.LastPurchase, c.Loyalty, c.Active, c.CreatedAt); err != nil {
				return err
			}
		}
		for _, s := range doc.Suppliers {
			if _, err := tx.Exec(ctx, `INSERT INTO suppliers (id, name, email, phone, address, contact_person, payment_terms, active, total_orders, last_order, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				s.ID, s.Name, s.Email, s.Phone, s.Address, s.ContactPerson, s.PaymentTerms,
				s.Active, s.TotalOrders, s.LastOrder, s.CreatedAt); err != nil {
				return err
			}
		}

		// realign the id sequences with the restored rows
		for _, table := range backedTables {
			if _, err := tx.Exec(ctx,
				`SELECT setval(pg_get_serial_sequence($1, 'id'), COALESCE((SELECT MAX(id) FROM `+table+`), 0) + 1, false)`,
				table); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) exportUsers(ctx context.Context) ([]UserRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, password_hash, role, store_access, active, created_at, last_login FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []UserRecord{}
	for rows.Next() {
		var u UserRecord
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.StoreAccess, &u.Active, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) exportStores(ctx context.Context) ([]masterdata.Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, address, phone, email, manager, currency, timezone, active, created_at FROM stores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []masterdata.Store{}
	for rows.Next() {
		var s masterdata.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Email, &s.Manager, &s.Currency, &s.Timezone, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) exportCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(parent_id, 0), description, active, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.Description, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) exportProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, barcode, COALESCE(category_id, 0), brand, supplier, active, created_at, updated_at FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Barcode, &p.CategoryID, &p.Brand, &p.Supplier, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) exportStockLevels(ctx context.Context) ([]ledger.StockLevel, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, store_id, stock, min_stock, max_stock, purchase_price, selling_price, last_updated, updated_by FROM store_products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ledger.StockLevel{}
	for rows.Next() {
		var sp ledger.StockLevel
		if err := rows.Scan(&sp.ID, &sp.ProductID, &sp.StoreID, &sp.Stock, &sp.MinStock, &sp.MaxStock, &sp.PurchasePrice, &sp.SellingPrice, &sp.LastUpdated, &sp.UpdatedBy); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (r *Repository) exportTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, kind, product_id, store_id, COALESCE(to_store_id, 0), quantity, price, total, user_id, COALESCE(customer_id, 0), COALESCE(supplier_id, 0), COALESCE(invoice_id, 0), COALESCE(ref_id::text, ''), notes, status, created_at FROM transactions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ledger.Transaction{}
	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(&t.ID, &t.Kind, &t.ProductID, &t.StoreID, &t.ToStoreID, &t.Quantity, &t.Price, &t.Total, &t.UserID, &t.CustomerID, &t.SupplierID, &t.InvoiceID, &t.RefID, &t.Notes, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) exportInvoices(ctx context.Context) ([]invoices.Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, type, number, store_id, entity_id, entity_name,
COALESCE(entity_email,''), COALESCE(entity_phone,''), COALESCE(entity_address,''),
items, subtotal, tax_rate, tax_amount, discount_rate, discount_amount,
total, paid, balance, status, payment_terms, notes, created_at, due_date, paid_at FROM invoices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []invoices.Invoice{}
	for rows.Next() {
		var inv invoices.Invoice
		var items []byte
		if err := rows.Scan(&inv.ID, &inv.Type, &inv.Number, &inv.StoreID, &inv.EntityID, &inv.EntityName,
			&inv.EntityEmail, &inv.EntityPhone, &inv.EntityAddress,
			&items, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.DiscountRate, &inv.DiscountAmount,
			&inv.Total, &inv.Paid, &inv.Balance, &inv.Status, &inv.PaymentTerms, &inv.Notes,
			&inv.CreatedAt, &inv.DueDate, &inv.PaidAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *Repository) exportCustomers(ctx context.Context) ([]masterdata.Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(email,''), COALESCE(phone,''), COALESCE(address,''), total_purchases, last_purchase, loyalty, active, created_at FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []masterdata.Customer{}
	for rows.Next() {
		var c masterdata.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.TotalPurchases, &c.LastPurchase, &c.Loyalty, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) exportSuppliers(ctx context.Context) ([]masterdata.Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone, address, contact_person, payment_terms, active, total_orders, last_order, created_at FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []masterdata.Supplier{}
	for rows.Next() {
		var s masterdata.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.ContactPerson, &s.PaymentTerms, &s.Active, &s.TotalOrders, &s.LastOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
