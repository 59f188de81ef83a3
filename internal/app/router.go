package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerkeep/ledgerkeep/internal/auth"
	"github.com/ledgerkeep/ledgerkeep/internal/ledger"
	"github.com/ledgerkeep/ledgerkeep/internal/logbooks"
	"github.com/ledgerkeep/ledgerkeep/internal/observability"
	"github.com/ledgerkeep/ledgerkeep/internal/overviews"
	"github.com/ledgerkeep/ledgerkeep/internal/token"
	"github.com/ledgerkeep/ledgerkeep/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Signer           *token.Signer
	AuthHandler      *auth.Handler
	OverviewsHandler *overviews.Handler
	LogbooksHandler  *logbooks.Handler
	ItemsHandler     *ledger.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(gr chi.Router) {
		gr.Use(auth.RequireAccount(params.Signer))

		gr.Route("/overviews", func(or chi.Router) {
			params.OverviewsHandler.MountRoutes(or, func(ir chi.Router) {
				params.ItemsHandler.MountParentRoutes(ir, ledger.ParentOverview)
			})
		})
		gr.Route("/logbooks", func(lr chi.Router) {
			params.LogbooksHandler.MountRoutes(lr, func(ir chi.Router) {
				params.ItemsHandler.MountParentRoutes(ir, ledger.ParentLogbook)
			})
		})
		gr.Route("/items", params.ItemsHandler.MountItemRoutes)

		if params.JobHandler != nil {
			gr.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
