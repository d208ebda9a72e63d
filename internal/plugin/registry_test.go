package plugin_test

import (
	"context"
	"testing"

	"mediatasks/internal/plugin"
)

func noopPhase(context.Context, *plugin.TaskContext, any) error { return nil }

func TestRegisterDefaultsAndDuplicates(t *testing.T) {
	reg := plugin.NewRegistry()
	if err := reg.Register(plugin.Info{Name: "b", Output: noopPhase}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := reg.Register(plugin.Info{Name: "b", Output: noopPhase}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := reg.Register(plugin.Info{Name: "empty"}); err == nil {
		t.Fatal("expected error for plugin without handlers")
	}
	if err := reg.Register(plugin.Info{Name: " "}); err == nil {
		t.Fatal("expected error for blank name")
	}

	info, ok := reg.Lookup("b")
	if !ok {
		t.Fatal("expected plugin b")
	}
	if info.Priority != plugin.DefaultPriority || info.APIVersion != plugin.APIVersion {
		t.Fatalf("unexpected defaults: %+v", info)
	}
	if phases := info.Phases(); len(phases) != 1 || phases[0] != plugin.PhaseOutput {
		t.Fatalf("unexpected phases: %v", phases)
	}
}

func TestAliasCarriesDeprecation(t *testing.T) {
	reg := plugin.NewRegistry()
	if err := reg.Register(plugin.Info{Name: "real", Groups: []string{plugin.GroupList}, Output: noopPhase, Priority: plugin.LastPriority}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := reg.Alias("old", "real", "old is deprecated, use real instead"); err != nil {
		t.Fatalf("Alias returned error: %v", err)
	}
	if err := reg.Alias("ghost", "missing", ""); err == nil {
		t.Fatal("expected alias of unknown plugin to fail")
	}

	old, _ := reg.Lookup("old")
	if old.Deprecated != "old is deprecated, use real instead" || old.Priority != plugin.LastPriority {
		t.Fatalf("unexpected alias info: %+v", old)
	}
	target, _ := reg.Lookup("real")
	if target.Deprecated != "" {
		t.Fatal("alias must not mark the target deprecated")
	}
	if group := reg.Group(plugin.GroupList); len(group) != 2 || group[0].Name != "old" {
		t.Fatalf("unexpected list group: %+v", group)
	}
}

func TestParseWithoutConfigFunc(t *testing.T) {
	info := plugin.Info{Name: "x"}
	got, err := info.Parse(42)
	if err != nil || got != 42 {
		t.Fatalf("Parse = %v, %v", got, err)
	}
}
