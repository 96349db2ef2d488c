package logging

import (
	"io"
	"strings"
	"time"

	"github.com/bnema/neuroledger/internal/config"
	"github.com/rs/zerolog"
)

// New builds the process logger. Unknown levels fall back to info since
// config.Validate rejects them before this point.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("component", "neuro").Logger()
}
