package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/auth"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "json"))

	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	ctx = auth.WithPrincipal(ctx, auth.Principal{UserID: uuid.New(), Name: "dana", Role: auth.RoleManager})

	FromContext(ctx).Info("settled")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "settled", line["msg"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "dana", line["actor"])
	assert.Equal(t, "manager", line["role"])
}
