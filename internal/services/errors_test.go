package services_test

import (
	"errors"
	"strings"
	"testing"

	"mediatasks/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrRemoteService, "favorites", "list", "fetch favorites", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"favorites", "list", "fetch favorites", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureScopeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Scope
	}{
		{"entry", services.Wrap(services.ErrEntry, "rename", "", "content_files missing", nil), services.ScopeEntry},
		{"render", services.Wrap(services.ErrRender, "render", "", "bad template", nil), services.ScopeEntry},
		{"lookup", services.Wrap(services.ErrLookup, "tvdb", "series", "", errors.New("404")), services.ScopeEntry},
		{"remote", services.Wrap(services.ErrRemoteService, "favorites", "list", "", nil), services.ScopeTask},
		{"config", services.Wrap(services.ErrConfiguration, "config", "", "", nil), services.ScopeTask},
		{"plain", errors.New("boom"), services.ScopeTask},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.FailureScope(tt.err); got != tt.want {
				t.Fatalf("FailureScope = %s, want %s", got, tt.want)
			}
		})
	}
}
