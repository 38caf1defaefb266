// Package logging builds the leveled key/value logger used across extratos.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/extratos/verifier/internal/config"
)

// New creates a logger writing to w, configured by cfg. Unknown levels
// fall back to info; unknown formats to text.
func New(cfg config.LoggingConfig, w io.Writer) *log.Logger {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	return logger
}

// WithSystem scopes a logger to a subsystem, e.g. "server" or "session".
func WithSystem(logger *log.Logger, system string) *log.Logger {
	return logger.With("system", system)
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
