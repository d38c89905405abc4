package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-pos/stockroom/internal/catalog"
	"github.com/stockroom-pos/stockroom/internal/invoices"
	"github.com/stockroom-pos/stockroom/internal/ledger"
	"github.com/stockroom-pos/stockroom/internal/masterdata"
	"github.com/stockroom-pos/stockroom/internal/notify"
	"github.com/stockroom-pos/stockroom/internal/observability"
	"github.com/stockroom-pos/stockroom/internal/state"
)

const pingTimeout = 2 * time.Second

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	LedgerHandler     *ledger.Handler
	CatalogHandler    *catalog.Handler
	MasterDataHandler *masterdata.Handler
	InvoiceHandler    *invoices.Handler
	NotifyHandler     *notify.Handler
	StateHandler      *state.Handler

	Pool    *pgxpool.Pool
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Stockroom defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			ctx, cancel := context.WithTimeout(req.Context(), pingTimeout)
			defer cancel()
			if err := params.Pool.Ping(ctx); err != nil {
				params.Logger.Error("health check failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		params.LedgerHandler.MountRoutes(api)
		params.CatalogHandler.Routes(api)
		params.MasterDataHandler.Routes(api)
		params.InvoiceHandler.Routes(api)
		params.NotifyHandler.MountRoutes(api)
		params.StateHandler.Routes(api)
	})

	return r
}
