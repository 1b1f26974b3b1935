package main

import (
	"io"

	"github.com/dafibh/ledger/ledger-backend/internal/config"
	"github.com/rs/zerolog"
)

// newLogger writes JSON in production and human-readable lines elsewhere
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	if !cfg.IsProduction() {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}
