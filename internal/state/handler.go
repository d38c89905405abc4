package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom-pos/stockroom/internal/backup"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/platform/httpx"
	"github.com/stockroom-pos/stockroom/internal/shared"
)

// maxImportSize caps backup uploads at 32 MiB.
const maxImportSize = 32 << 20

// SweepTrigger enqueues an immediate low-stock sweep.
type SweepTrigger interface {
	TriggerLowStockSweep(ctx context.Context) error
}

// Handler exposes the facade over HTTP: transaction creation, dashboard
// stats, the full snapshot and backup export/import.
type Handler struct {
	logger   *slog.Logger
	facade   *Facade
	backup   *backup.Service
	sweeper  SweepTrigger
	validate *validator.Validate
}

// NewHandler constructs Handler. sweeper may be nil when no job queue is
// available; restored data is then only re-checked on the next scheduled
// sweep.
func NewHandler(logger *slog.Logger, facade *Facade, backupSvc *backup.Service, sweeper SweepTrigger) *Handler {
	return &Handler{
		logger:   logger,
		facade:   facade,
		backup:   backupSvc,
		sweeper:  sweeper,
		validate: validator.New(),
	}
}

// Routes mounts facade endpoints on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/transactions", h.CreateTransaction)
	r.Get("/dashboard/stats", h.DashboardStats)
	r.Get("/snapshot", h.GetSnapshot)
	r.Get("/backup/export", h.ExportBackup)
	r.Post("/backup/import", h.ImportBackup)
}

type transactionRequest struct {
	Kind       string  `json:"kind" validate:"required,oneof=sale purchase transfer adjustment return waste"`
	ProductID  int64   `json:"productId" validate:"required"`
	StoreID    int64   `json:"storeId" validate:"required"`
	ToStoreID  int64   `json:"toStoreId"`
	Quantity   int64   `json:"quantity" validate:"required,gt=0"`
	Price      float64 `json:"price" validate:"gte=0"`
	Total      float64 `json:"total" validate:"gte=0"`
	UserID     int64   `json:"userId" validate:"required"`
	CustomerID int64   `json:"customerId"`
	SupplierID int64   `json:"supplierId"`
	InvoiceID  int64   `json:"invoiceId"`
	RefID      string  `json:"refId"`
	Notes      string  `json:"notes"`
	Status     string  `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	intent := ledger.TransactionIntent{
		Kind:       ledger.Kind(req.Kind),
		ProductID:  req.ProductID,
		StoreID:    req.StoreID,
		ToStoreID:  req.ToStoreID,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Total:      req.Total,
		UserID:     req.UserID,
		CustomerID: req.CustomerID,
		SupplierID: req.SupplierID,
		InvoiceID:  req.InvoiceID,
		RefID:      req.RefID,
		Notes:      req.Notes,
		Status:     ledger.Status(req.Status),
	}
	if intent.Total == 0 {
		intent.Total = float64(intent.Quantity) * intent.Price
	}

	id, err := h.facade.CreateTransaction(r.Context(), intent)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrUnknownKind),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidStatus),
		errors.Is(err, ledger.ErrMissingDestination),
		errors.Is(err, ledger.ErrSameStore):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(r.URL.Query().Get("storeId"), 10, 64)
	if err != nil || storeID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "storeId query parameter is required")
		return
	}
	httpx.JSON(w, http.StatusOK, h.facade.Stats(storeID))
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.facade.Current())
}

func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	payload, err := h.backup.Export(r.Context())
	if err != nil {
		h.logger.Error("backup export failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="stockroom-backup-`+time.Now().UTC().Format("20060102-150405")+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "could not read request body")
		return
	}
	if err := h.backup.Import(r.Context(), payload); err != nil {
		if errors.Is(err, shared.ErrInvalidDataFormat) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Data Format", "backup payload is not valid JSON")
			return
		}
		h.logger.Error("backup import failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if err := h.facade.Refresh(r.Context()); err != nil {
		h.logger.Error("snapshot refresh failed after import", "error", err)
	}
	if h.sweeper != nil {
		if err := h.sweeper.TriggerLowStockSweep(r.Context()); err != nil {
			h.logger.Warn("low stock sweep enqueue failed after import", "error", err)
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "imported"})
}
