package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/contre95/annil/src/features/config"
)

// SetupLogger builds the process logger from the logger section of the config.
func SetupLogger(cfg *config.Manager) *slog.Logger {
	settings := cfg.Get().Logger

	var formatter log.Formatter
	switch settings.Format {
	case "json":
		formatter = log.JSONFormatter
	case "text":
		formatter = log.TextFormatter
	default:
		formatter = log.LogfmtFormatter
	}

	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "Annil",
		Formatter:       formatter,
		Level:           ParseLevel(settings.Level),
	})
	if !settings.Enabled {
		handler.SetLevel(log.FatalLevel)
	}

	logger := slog.New(handler)
	logger.Info("Logger initialized", "time", time.Now().Format(time.RFC3339))
	return logger
}

// ParseLevel maps a config level name to a charmbracelet level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
