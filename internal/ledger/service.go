package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stockroom-pos/stockroom/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetStockLevel(ctx context.Context, productID, storeID int64) (StockLevel, error)
	ListStockLevels(ctx context.Context, storeID int64) ([]StockLevel, error)
	UpsertStockLevel(ctx context.Context, level StockLevel) (StockLevel, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
}

// Notifier receives low-stock breaches detected while applying a transaction.
type Notifier interface {
	EmitLowStock(ctx context.Context, storeID, productID, currentStock, minStock int64) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service applies transactions to stock and records movements.
type Service struct {
	repo     RepositoryPort
	notifier Notifier
	audit    AuditPort
	logger   *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, notifier Notifier, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, audit: audit, logger: logger}
}

// stockStep is one signed stock change produced by a transaction.
type stockStep struct {
	storeID int64
	delta   int64
}

// Apply persists the transaction and adjusts stock, the movement trail and
// low-stock detection as one database transaction. The stock row is read
// FOR UPDATE, so concurrent appliers against the same (product, store) pair
// serialize instead of losing updates.
func (s *Service) Apply(ctx context.Context, intent TransactionIntent) (int64, error) {
	if err := s.validate(&intent); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	var txID int64
	var breaches []LowStockBreach

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		record := Transaction{
			Kind:       intent.Kind,
			ProductID:  intent.ProductID,
			StoreID:    intent.StoreID,
			ToStoreID:  intent.ToStoreID,
			Quantity:   intent.Quantity,
			Price:      intent.Price,
			Total:      intent.Total,
			UserID:     intent.UserID,
			CustomerID: intent.CustomerID,
			SupplierID: intent.SupplierID,
			InvoiceID:  intent.InvoiceID,
			RefID:      intent.RefID,
			Notes:      intent.Notes,
			Status:     intent.Status,
			CreatedAt:  now,
		}
		id, err := tx.InsertTransaction(ctx, record)
		if err != nil {
			return err
		}
		txID = id

		for _, step := range stockSteps(intent) {
			breach, err := s.applyStep(ctx, tx, txID, intent, step, now)
			if err != nil {
				return err
			}
			if breach != nil {
				breaches = append(breaches, *breach)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, b := range breaches {
		if s.notifier == nil {
			break
		}
		if err := s.notifier.EmitLowStock(ctx, b.StoreID, b.ProductID, b.CurrentStock, b.MinStock); err != nil {
			s.logger.Error("low stock notification failed",
				slog.Int64("product_id", b.ProductID),
				slog.Int64("store_id", b.StoreID),
				slog.Any("error", err))
		}
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  intent.UserID,
			Action:   fmt.Sprintf("ledger:%s", intent.Kind),
			Entity:   "transaction",
			EntityID: fmt.Sprintf("%d", txID),
			Meta: map[string]any{
				"product_id": intent.ProductID,
				"store_id":   intent.StoreID,
				"quantity":   intent.Quantity,
				"total":      intent.Total,
			},
		})
	}

	return txID, nil
}

// applyStep locks the stock row, clamps the new stock at zero, updates it and
// appends the movement record. A missing stock row skips the stock change with
// a logged warning; the transaction record stays.
func (s *Service) applyStep(ctx context.Context, tx TxRepository, txID int64, intent TransactionIntent, step stockStep, now time.Time) (*LowStockBreach, error) {
	level, err := tx.GetStockLevelForUpdate(ctx, intent.ProductID, step.storeID)
	if err != nil {
		if errors.Is(err, ErrStockLevelNotFound) {
			s.logger.Warn("stock update skipped, no stock level for product in store",
				slog.Int64("product_id", intent.ProductID),
				slog.Int64("store_id", step.storeID))
			return nil, nil
		}
		return nil, err
	}

	previous := level.Stock
	newStock := previous + step.delta
	if newStock < 0 {
		newStock = 0
	}

	if err := tx.UpdateStockLevel(ctx, level.ID, newStock, intent.UserID, now); err != nil {
		return nil, err
	}

	direction := DirectionOut
	reason := "Stock Out"
	if step.delta > 0 {
		direction = DirectionIn
		reason = "Stock In"
	}
	movement := StockMovement{
		ProductID:     intent.ProductID,
		StoreID:       step.storeID,
		TransactionID: txID,
		Direction:     direction,
		Quantity:      abs(step.delta),
		PreviousStock: previous,
		NewStock:      newStock,
		Reason:        reason,
		UserID:        intent.UserID,
		CreatedAt:     now,
	}
	if _, err := tx.InsertMovement(ctx, movement); err != nil {
		return nil, err
	}

	if newStock <= level.MinStock {
		return &LowStockBreach{
			StoreID:      step.storeID,
			ProductID:    intent.ProductID,
			CurrentStock: newStock,
			MinStock:     level.MinStock,
		}, nil
	}
	return nil, nil
}

func (s *Service) validate(intent *TransactionIntent) error {
	if !intent.Kind.Valid() {
		return ErrUnknownKind
	}
	if intent.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if intent.Status == "" {
		intent.Status = StatusCompleted
	}
	if !intent.Status.Valid() {
		return ErrInvalidStatus
	}
	if intent.ProductID == 0 || intent.StoreID == 0 {
		return errors.New("ledger: product and store required")
	}
	if intent.Kind == KindTransfer {
		if intent.ToStoreID == 0 {
			return ErrMissingDestination
		}
		if intent.ToStoreID == intent.StoreID {
			return ErrSameStore
		}
	}
	if intent.RefID != "" {
		if _, err := uuid.Parse(intent.RefID); err != nil {
			return fmt.Errorf("ledger: invalid ref id: %w", err)
		}
	}
	return nil
}

// stockSteps maps a transaction kind to its signed stock changes. Sales,
// adjustments and waste remove stock; purchases and returns add it; a
// transfer removes at the source store and adds at the destination.
func stockSteps(intent TransactionIntent) []stockStep {
	q := intent.Quantity
	switch intent.Kind {
	case KindSale, KindAdjustment, KindWaste:
		return []stockStep{{storeID: intent.StoreID, delta: -q}}
	case KindPurchase, KindReturn:
		return []stockStep{{storeID: intent.StoreID, delta: q}}
	case KindTransfer:
		return []stockStep{
			{storeID: intent.StoreID, delta: -q},
			{storeID: intent.ToStoreID, delta: q},
		}
	}
	return nil
}

// GetStockLevel returns the stock row for a (product, store) pair.
func (s *Service) GetStockLevel(ctx context.Context, productID, storeID int64) (StockLevel, error) {
	if productID == 0 || storeID == 0 {
		return StockLevel{}, errors.New("ledger: product and store required")
	}
	return s.repo.GetStockLevel(ctx, productID, storeID)
}

// ListStockLevels lists stock rows, optionally scoped to one store.
func (s *Service) ListStockLevels(ctx context.Context, storeID int64) ([]StockLevel, error) {
	return s.repo.ListStockLevels(ctx, storeID)
}

// SetStockLevel creates or reconfigures a (product, store) stock row. The
// stock counter only applies when the row is first created.
func (s *Service) SetStockLevel(ctx context.Context, level StockLevel) (StockLevel, error) {
	if level.ProductID == 0 || level.StoreID == 0 {
		return StockLevel{}, errors.New("ledger: product and store required")
	}
	if level.Stock < 0 || level.MinStock < 0 || level.MaxStock < 0 {
		return StockLevel{}, errors.New("ledger: stock thresholds must not be negative")
	}
	return s.repo.UpsertStockLevel(ctx, level)
}

// ListMovements lists the stock movement audit trail.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// ListTransactions lists recorded transactions.
func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
