package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteRegistrar mounts a controller's routes on r.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type Options struct {
	AuthMiddleware func(http.Handler) http.Handler
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

// New builds the HTTP handler. Health, metrics and docs are public; every
// registrar is mounted behind the auth middleware when one is given.
func New(opts Options, registrars ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	registerSwaggerRoutes(r)

	r.Group(func(r chi.Router) {
		if opts.AuthMiddleware != nil {
			r.Use(opts.AuthMiddleware)
		}
		for _, registrar := range registrars {
			if registrar != nil {
				registrar.RegisterRoutes(r)
			}
		}
	})

	return r
}
