// Package logging wires github.com/charmbracelet/log (named as a direct
// dependency in doismellburning-samoyed's go.mod) into a single
// constructor shared by the CLI and server entry points. Loggers are
// passed explicitly through the pipeline rather than referenced as a
// global singleton, so align.Pipeline and worker.Worker stay testable
// without a package-level logger to reset between tests.
package logging

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/naozine/syncalign/internal/config"
)

// New builds a *log.Logger from cfg, writing to stderr. Format "json"
// switches to structured JSON output; anything else uses charmbracelet's
// default text renderer.
func New(cfg config.LoggingConfig) *log.Logger {
	opts := log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	}
	if cfg.Format == "json" {
		opts.Formatter = log.JSONFormatter
	}

	logger := log.NewWithOptions(os.Stderr, opts)
	logger.SetLevel(parseLevel(cfg.Level))
	return logger
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
