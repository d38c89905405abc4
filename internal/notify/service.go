package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

// RepositoryPort abstracts notification storage.
type RepositoryPort interface {
	Insert(ctx context.Context, n Notification) (int64, error)
	HasUnreadLowStock(ctx context.Context, productID int64) (bool, error)
	ListUnread(ctx context.Context, userID, storeID int64) ([]Notification, error)
	List(ctx context.Context, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// ProductNamer resolves product names for notification messages.
type ProductNamer interface {
	ProductName(ctx context.Context, productID int64) (string, error)
}

// Service decides which notifications get recorded.
type Service struct {
	repo     RepositoryPort
	products ProductNamer
	logger   *slog.Logger
	printer  *message.Printer
	titler   cases.Caser
}

// NewService builds Service.
func NewService(repo RepositoryPort, products ProductNamer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		products: products,
		logger:   logger,
		printer:  message.NewPrinter(language.English),
		titler:   cases.Title(language.English),
	}
}

// EmitLowStock records a low-stock warning unless an unread one already exists
// for the product. The unread-warning-per-product key is shared with the
// periodic sweep, so both triggers dedupe against each other. The unread check
// here is only a fast path; concurrent triggers that both pass it resolve to a
// single row through the partial unique index behind Repository.Insert.
func (s *Service) EmitLowStock(ctx context.Context, storeID, productID, currentStock, minStock int64) error {
	exists, err := s.repo.HasUnreadLowStock(ctx, productID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	name, err := s.products.ProductName(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("low stock alert skipped, unknown product", slog.Int64("product_id", productID))
			return nil
		}
		return err
	}

	_, err = s.repo.Insert(ctx, Notification{
		Kind:    KindWarning,
		Title:   "Low Stock Alert",
		Message: fmt.Sprintf("%s is running low (%d/%d)", name, currentStock, minStock),
		StoreID: storeID,
		LowStock: &LowStockPayload{
			ProductID:    productID,
			CurrentStock: currentStock,
			MinStock:     minStock,
		},
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// EmitTransactionSuccess records a success notification for a completed
// transaction. No de-duplication: each completed transaction announces once.
func (s *Service) EmitTransactionSuccess(ctx context.Context, in TransactionSuccess) error {
	_, err := s.repo.Insert(ctx, Notification{
		Kind:    KindSuccess,
		Title:   "Transaction Completed",
		Message: s.printer.Sprintf("%s of $%.2f completed", s.titler.String(in.Kind), in.Amount),
		UserID:  in.UserID,
		StoreID: in.StoreID,
		Transaction: &TransactionPayload{
			TransactionID: in.TransactionID,
			Amount:        in.Amount,
		},
		CreatedAt: time.Now().UTC(),
	})
	return err
}

// ListUnread returns unread notifications for a user/store, newest first.
// Rows without a user or store are broadcast and always included.
func (s *Service) ListUnread(ctx context.Context, userID, storeID int64) ([]Notification, error) {
	return s.repo.ListUnread(ctx, userID, storeID)
}

// List returns recent notifications, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Notification, error) {
	return s.repo.List(ctx, limit)
}

// MarkRead flips the read flag.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotificationNotFound
	}
	return s.repo.MarkRead(ctx, id)
}
