package debug

import (
	"context"
	"testing"
)

func TestIsEnabled(t *testing.T) {
	t.Setenv("CENTRAL_DEBUG", "")

	ctx := context.Background()
	if IsEnabled(ctx) {
		t.Error("Expected disabled by default")
	}
	if !IsEnabled(WithDebug(ctx, true)) {
		t.Error("Expected enabled via context")
	}
	if IsEnabled(WithDebug(ctx, false)) {
		t.Error("Expected explicit false to win")
	}
}

func TestIsEnabled_EnvFallback(t *testing.T) {
	t.Setenv("CENTRAL_DEBUG", "1")

	if !IsEnabled(context.Background()) {
		t.Error("Expected env fallback when context is silent")
	}
	// An explicit context setting overrides the environment.
	if IsEnabled(WithDebug(context.Background(), false)) {
		t.Error("Expected context to override env")
	}
}
