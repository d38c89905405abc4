package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// RepositoryPort abstracts invoice persistence.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Invoice, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	Insert(ctx context.Context, inv Invoice) (int64, error)
	UpdatePayment(ctx context.Context, id int64, paid, balance float64, status Status, paidAt *time.Time) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	CountForMonth(ctx context.Context, t time.Time) (int64, error)
}

// Service carries invoice business rules.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateInput is what callers provide; totals are computed server side.
type CreateInput struct {
	Type          Type
	StoreID       int64
	EntityID      int64
	EntityName    string
	EntityEmail   string
	EntityPhone   string
	EntityAddress string
	Items         []Item
	TaxRate       float64
	DiscountRate  float64
	PaymentTerms  string
	Notes         string
	DueDate       time.Time
}

// Create computes totals, assigns a sequential number and stores the invoice
// as a draft.
func (s *Service) Create(ctx context.Context, in CreateInput) (Invoice, error) {
	if !in.Type.Valid() {
		return Invoice{}, ErrInvalidType
	}
	if len(in.Items) == 0 {
		return Invoice{}, ErrNoItems
	}

	now := s.now().UTC()
	var subtotal float64
	items := make([]Item, len(in.Items))
	for i, item := range in.Items {
		item.Total = round2(float64(item.Quantity)*item.Price - item.Discount)
		items[i] = item
		subtotal += item.Total
	}
	subtotal = round2(subtotal)
	discountAmount := round2(subtotal * in.DiscountRate / 100)
	taxAmount := round2((subtotal - discountAmount) * in.TaxRate / 100)
	total := round2(subtotal - discountAmount + taxAmount)

	number, err := s.nextNumber(ctx, in.Type, now)
	if err != nil {
		return Invoice{}, err
	}

	dueDate := in.DueDate
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, 30)
	}

	inv := Invoice{
		Type:           in.Type,
		Number:         number,
		StoreID:        in.StoreID,
		EntityID:       in.EntityID,
		EntityName:     in.EntityName,
		EntityEmail:    in.EntityEmail,
		EntityPhone:    in.EntityPhone,
		EntityAddress:  in.EntityAddress,
		Items:          items,
		Subtotal:       subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      taxAmount,
		DiscountRate:   in.DiscountRate,
		DiscountAmount: discountAmount,
		Total:          total,
		Paid:           0,
		Balance:        total,
		Status:         StatusDraft,
		PaymentTerms:   in.PaymentTerms,
		Notes:          in.Notes,
		CreatedAt:      now,
		DueDate:        dueDate,
	}
	id, err := s.repo.Insert(ctx, inv)
	if err != nil {
		return Invoice{}, err
	}
	inv.ID = id
	s.logger.Info("invoice created", "invoice_id", id, "number", number, "total", total)
	return inv, nil
}

// nextNumber builds numbers like INV-202608-0007, sequenced per month.
func (s *Service) nextNumber(ctx context.Context, t Type, now time.Time) (string, error) {
	count, err := s.repo.CountForMonth(ctx, now)
	if err != nil {
		return "", err
	}
	prefix := "INV"
	if t == TypeSupplier {
		prefix = "PUR"
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("200601"), count+1), nil
}

// List returns invoices matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Invoice, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one invoice, flagging it overdue on read when the due date has
// passed with a balance outstanding.
func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if s.isOverdue(inv) {
		inv.Status = StatusOverdue
		if err := s.repo.UpdateStatus(ctx, id, StatusOverdue); err != nil {
			s.logger.Warn("mark invoice overdue failed", "invoice_id", id, "error", err)
		}
	}
	return inv, nil
}

// Send moves a draft to sent.
func (s *Service) Send(ctx context.Context, id int64) error {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != StatusDraft {
		return ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, id, StatusSent)
}

// Cancel voids an invoice that has not collected any payment.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status == StatusPaid || inv.Status == StatusCancelled || inv.Paid > 0 {
		return ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, id, StatusCancelled)
}

// RecordPayment applies a payment against the balance. Full settlement moves
// the invoice to paid and stamps paid_at; anything less moves it to partial.
func (s *Service) RecordPayment(ctx context.Context, id int64, amount float64) (Invoice, error) {
	if amount <= 0 {
		return Invoice{}, ErrInvalidPayment
	}
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	switch inv.Status {
	case StatusDraft, StatusCancelled, StatusPaid:
		return Invoice{}, ErrInvoiceNotPayable
	}
	if amount > inv.Balance+0.005 {
		return Invoice{}, ErrOverpayment
	}

	inv.Paid = round2(inv.Paid + amount)
	inv.Balance = round2(inv.Total - inv.Paid)
	if inv.Balance <= 0 {
		inv.Balance = 0
		inv.Status = StatusPaid
		now := s.now().UTC()
		inv.PaidAt = &now
	} else {
		inv.Status = StatusPartial
	}
	if err := s.repo.UpdatePayment(ctx, id, inv.Paid, inv.Balance, inv.Status, inv.PaidAt); err != nil {
		return Invoice{}, err
	}
	s.logger.Info("invoice payment recorded", "invoice_id", id, "amount", amount, "status", inv.Status)
	return inv, nil
}

func (s *Service) isOverdue(inv Invoice) bool {
	switch inv.Status {
	case StatusSent, StatusPartial:
		return inv.Balance > 0 && s.now().UTC().After(inv.DueDate)
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
