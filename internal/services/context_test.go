package services_test

import (
	"context"
	"testing"

	"mediatasks/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTask(ctx, "tv-sync")
	ctx = services.WithPlugin(ctx, "thetvdb_list")
	ctx = services.WithPhase(ctx, "input")
	ctx = services.WithRequestID(ctx, "req-123")

	if name, ok := services.TaskFromContext(ctx); !ok || name != "tv-sync" {
		t.Fatalf("unexpected task: %v %v", name, ok)
	}
	if name, ok := services.PluginFromContext(ctx); !ok || name != "thetvdb_list" {
		t.Fatalf("unexpected plugin: %v %v", name, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "input" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTask(ctx, "")
	ctx = services.WithPhase(ctx, "")
	if _, ok := services.TaskFromContext(ctx); ok {
		t.Fatal("expected no task value")
	}
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Fatal("expected no phase value")
	}
}
