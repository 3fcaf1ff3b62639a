package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RouterConfig carries the dependencies of NewRouter besides the handler.
type RouterConfig struct {
	Logger         zerolog.Logger
	AllowedOrigins []string

	// Gatherer backs /metrics. If nil, /metrics is not mounted.
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the API, health and metrics routes.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(cfg.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health/live", h.Live)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/convert", h.Convert)
		r.Get("/zones", h.Zones)
		r.Get("/offset", h.Offset)
		r.Get("/formats", h.Formats)
		r.Get("/preferences", h.GetPreferences)
		r.Put("/preferences", h.PutPreferences)
	})
	return r
}
