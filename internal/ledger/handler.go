package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-pos/stockroom/internal/platform/httpx"
)

// Handler wires HTTP endpoints for ledger reads.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stock-levels", h.handleListStockLevels)
	r.Put("/stock-levels", h.handleSetStockLevel)
	r.Get("/stock-levels/{storeID}/{productID}", h.handleGetStockLevel)
	r.Get("/movements", h.handleListMovements)
	r.Get("/transactions", h.handleListTransactions)
}

func (h *Handler) handleListStockLevels(w http.ResponseWriter, r *http.Request) {
	storeID := queryInt(r, "store_id")
	levels, err := h.service.ListStockLevels(r.Context(), storeID)
	if err != nil {
		h.logger.Error("list stock levels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, levels)
}

func (h *Handler) handleGetStockLevel(w http.ResponseWriter, r *http.Request) {
	storeID, err1 := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	productID, err2 := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "store and product ids must be numeric")
		return
	}
	level, err := h.service.GetStockLevel(r.Context(), productID, storeID)
	if err != nil {
		if errors.Is(err, ErrStockLevelNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get stock level", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, level)
}

type stockLevelRequest struct {
	ProductID     int64   `json:"productId"`
	StoreID       int64   `json:"storeId"`
	Stock         int64   `json:"stock"`
	MinStock      int64   `json:"minStock"`
	MaxStock      int64   `json:"maxStock"`
	PurchasePrice float64 `json:"purchasePrice"`
	SellingPrice  float64 `json:"sellingPrice"`
	UpdatedBy     int64   `json:"updatedBy"`
}

func (h *Handler) handleSetStockLevel(w http.ResponseWriter, r *http.Request) {
	var req stockLevelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	level, err := h.service.SetStockLevel(r.Context(), StockLevel{
		ProductID:     req.ProductID,
		StoreID:       req.StoreID,
		Stock:         req.Stock,
		MinStock:      req.MinStock,
		MaxStock:      req.MaxStock,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		UpdatedBy:     req.UpdatedBy,
	})
	if err != nil {
		h.logger.Error("set stock level", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, level)
}

func (h *Handler) handleListMovements(w http.ResponseWriter, r *http.Request) {
	filter := MovementFilter{
		ProductID: queryInt(r, "product_id"),
		StoreID:   queryInt(r, "store_id"),
		Limit:     int(queryInt(r, "limit")),
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("list movements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movements)
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := TransactionFilter{
		StoreID: queryInt(r, "store_id"),
		Kind:    Kind(r.URL.Query().Get("kind")),
		Status:  Status(r.URL.Query().Get("status")),
		Limit:   int(queryInt(r, "limit")),
	}
	transactions, err := h.service.ListTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, transactions)
}

func queryInt(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return v
}
