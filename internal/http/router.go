package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/flux/internal/http/export"
	syncHandler "github.com/MrJamesThe3rd/flux/internal/http/sync"
	"github.com/MrJamesThe3rd/flux/internal/http/transaction"
)

type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func New(
	transactionsV1 *transaction.Handler,
	syncV1 *syncHandler.Handler,
	exportV1 *export.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Get("/summary", transactionsV1.Summary)

		r.Route("/sync", syncV1.Routes)

		r.Route("/sheets", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			syncV1.SheetRoutes(r)
		})

		exportV1.Routes(r)
	})

	return router
}
