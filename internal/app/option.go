package app

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/ngrash/tsconv/internal/config"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *config.Config
	logger   *zerolog.Logger
	listener net.Listener
}

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l zerolog.Logger) Option {
	return func(a *application) {
		a.logger = &l
	}
}

// WithListener serves on l instead of listening on the configured port.
func WithListener(l net.Listener) Option {
	return func(a *application) {
		a.listener = l
	}
}
