package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom-pos/stockroom/internal/platform/httpx"
)

// Handler exposes the catalog over HTTP.
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

func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrCategoryNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrBarcodeTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "barcode already in use")
	default:
		httpx.RespondError(w, err)
	}
}

// Routes mounts catalog endpoints on the router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Post("/products", h.CreateProduct)
	r.Get("/products/{id}", h.GetProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Get("/products/barcode/{barcode}", h.LookupBarcode)
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
}

type productRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
	Barcode     string `json:"barcode" validate:"max=64"`
	CategoryID  int64  `json:"categoryId"`
	Brand       string `json:"brand" validate:"max=100"`
	Supplier    string `json:"supplier" validate:"max=100"`
	Active      bool   `json:"active"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{
		Search: r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			filters.CategoryID = id
		}
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true"
		filters.Active = &active
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	products, err := h.service.ListProducts(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		respondCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "product id must be numeric")
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) LookupBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.LookupBarcode(r.Context(), chi.URLParam(r, "barcode"))
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.CreateProduct(r.Context(), Product{
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		CategoryID:  req.CategoryID,
		Brand:       req.Brand,
		Supplier:    req.Supplier,
		Active:      req.Active,
	})
	if err != nil {
		h.logger.Error("create product failed", "error", err)
		respondCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "product id must be numeric")
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateProduct(r.Context(), id, Product{
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		CategoryID:  req.CategoryID,
		Brand:       req.Brand,
		Supplier:    req.Supplier,
		Active:      req.Active,
	}); err != nil {
		respondCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	ParentID    int64  `json:"parentId"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	category, err := h.service.CreateCategory(r.Context(), Category{
		Name:        req.Name,
		ParentID:    req.ParentID,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}
