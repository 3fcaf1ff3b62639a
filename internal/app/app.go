// Package app wires configuration, the zone catalog, the preference store
// and the HTTP API into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ngrash/tsconv/calendar"
	"github.com/ngrash/tsconv/detect"
	"github.com/ngrash/tsconv/internal/api"
	"github.com/ngrash/tsconv/internal/logging"
	"github.com/ngrash/tsconv/internal/prefs"
	"github.com/ngrash/tsconv/tzsearch"
)

// Run serves the API until ctx is cancelled or the server fails.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return errors.New("config is required")
	}
	cfg := app.config
	start := time.Now()

	logger, err := app.buildLogger()
	if err != nil {
		return err
	}

	cal := &calendar.System{ZoneInfoDir: cfg.ZoneInfo.Dir}
	catalog, err := calendar.Catalog(cal)
	if err != nil {
		logger.Warn().Err(err).Int("zones", len(catalog)).Msg("zone catalog unavailable, using fallback")
	} else {
		logger.Info().Int("zones", len(catalog)).Msg("zone catalog loaded")
	}

	mode, err := detect.ParseMode(cfg.Defaults.DateFormat)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Preferences.Path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	store, err := prefs.Open(cfg.Preferences.Path,
		prefs.Preferences{DateFormat: mode, Timezone: cfg.Defaults.Timezone}, cal)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	current := store.Current()
	logger.Info().
		Str("path", store.Path()).
		Stringer("date_format", current.DateFormat).
		Str("timezone", current.Timezone).
		Msg("preferences loaded")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := &api.Handler{
		Calendar: cal,
		Catalog:  catalog,
		Table:    tzsearch.DefaultTable(),
		Prefs:    store,
		Metrics:  api.NewMetrics(reg),
	}
	srv := &http.Server{
		Addr: cfg.HTTP.Address(),
		Handler: api.NewRouter(h, api.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			Gatherer:       reg,
		}),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return store.Watch(gctx, cfg.Preferences.Debounce, logger, nil)
	})

	g.Go(func() error {
		var err error
		if app.listener != nil {
			logger.Info().Str("address", app.listener.Addr().String()).Msg("starting HTTP server")
			err = srv.Serve(app.listener)
		} else {
			logger.Info().Str("address", srv.Addr).Msg("starting HTTP server")
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("application error")
		return err
	}
	logger.Info().Dur("uptime", time.Since(start)).Msg("server stopped")
	return nil
}

func (a *application) buildLogger() (zerolog.Logger, error) {
	if a.logger != nil {
		return *a.logger, nil
	}
	return logging.New(os.Stderr, a.config.Log.Level, a.config.Log.Pretty)
}
