package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
)

// Init installs the process-wide slog handler.
func Init(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w. Unknown levels fall back to info, unknown formats to text.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

// FromContext returns the default logger enriched with the request id and the acting principal.
func FromContext(ctx context.Context) *slog.Logger {
	l := slog.Default()

	if id := middleware.GetReqID(ctx); id != "" {
		l = l.With("request_id", id)
	}

	if p, ok := auth.FromContext(ctx); ok {
		l = l.With("actor", p.Name, "role", p.Role)
	}

	return l
}
