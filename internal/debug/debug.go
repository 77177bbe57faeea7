// Package debug provides context-scoped debug mode with structured logging.
package debug

import (
	"context"
	"log/slog"
	"os"
)

type debugKey struct{}

// WithDebug returns a context with debug mode enabled or disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey{}, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context. Without
// an explicit setting it falls back to the CENTRAL_DEBUG environment
// variable, so library callers outside the CLI get debug logs too.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(debugKey{}).(bool); ok {
		return v
	}
	return os.Getenv("CENTRAL_DEBUG") != ""
}

// SetupLogger configures the default slog logger based on debug mode.
func SetupLogger(debugEnabled bool) {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
