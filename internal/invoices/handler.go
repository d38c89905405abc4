package invoices

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom-pos/stockroom/internal/platform/httpx"
)

// Handler exposes invoices over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// Routes mounts invoice endpoints on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/invoices", h.List)
	r.Post("/invoices", h.Create)
	r.Get("/invoices/{id}", h.Get)
	r.Post("/invoices/{id}/send", h.Send)
	r.Post("/invoices/{id}/cancel", h.Cancel)
	r.Post("/invoices/{id}/payments", h.RecordPayment)
}

func respondInvoiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidPayment):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvoiceNotPayable), errors.Is(err, ErrOverpayment), errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

type itemRequest struct {
	ProductID   int64   `json:"productId" validate:"required"`
	ProductName string  `json:"productName" validate:"required"`
	Quantity    int64   `json:"quantity" validate:"required,gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	Discount    float64 `json:"discount" validate:"gte=0"`
}

type createRequest struct {
	Type          string        `json:"type" validate:"required,oneof=supplier client"`
	StoreID       int64         `json:"storeId" validate:"required"`
	EntityID      int64         `json:"entityId" validate:"required"`
	EntityName    string        `json:"entityName" validate:"required,max=200"`
	EntityEmail   string        `json:"entityEmail" validate:"omitempty,email"`
	EntityPhone   string        `json:"entityPhone" validate:"max=32"`
	EntityAddress string        `json:"entityAddress"`
	Items         []itemRequest `json:"items" validate:"required,min=1,dive"`
	TaxRate       float64       `json:"taxRate" validate:"gte=0,lte=100"`
	DiscountRate  float64       `json:"discountRate" validate:"gte=0,lte=100"`
	PaymentTerms  string        `json:"paymentTerms" validate:"max=100"`
	Notes         string        `json:"notes"`
	DueDate       string        `json:"dueDate"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Type:   Type(r.URL.Query().Get("type")),
		Status: Status(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("storeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			filters.StoreID = id
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	out, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list invoices failed", "error", err)
		respondInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invoice id must be numeric")
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	in := CreateInput{
		Type:          Type(req.Type),
		StoreID:       req.StoreID,
		EntityID:      req.EntityID,
		EntityName:    req.EntityName,
		EntityEmail:   req.EntityEmail,
		EntityPhone:   req.EntityPhone,
		EntityAddress: req.EntityAddress,
		TaxRate:       req.TaxRate,
		DiscountRate:  req.DiscountRate,
		PaymentTerms:  req.PaymentTerms,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Discount:    item.Discount,
		})
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "dueDate must be YYYY-MM-DD")
			return
		}
		in.DueDate = due
	}

	inv, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create invoice failed", "error", err)
		respondInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Send)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invoice id must be numeric")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		respondInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type paymentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invoice id must be numeric")
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.RecordPayment(r.Context(), id, req.Amount)
	if err != nil {
		respondInvoiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}
