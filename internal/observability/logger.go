package observability

import (
	"io"
	"log/slog"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger creates a structured logger writing to w and sets it as the slog default.
// level: "debug", "warn", "error", or "info" (default).
// format: "json" for machine-readable, anything else for text.
//
// The CLI logs to stderr so prompts and summaries on stdout stay readable. The
// serve command uses sharedobs.NewLogger directly.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// NewServiceLogger delegates to the shared service logger, which writes to stdout.
func NewServiceLogger(level, format string) *slog.Logger {
	return sharedobs.NewLogger(level, format)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
