package plugins_test

import (
	"context"
	"errors"
	"testing"

	"mediatasks/internal/entry"
	"mediatasks/internal/logging"
	"mediatasks/internal/plugin"
	"mediatasks/internal/plugins"
	"mediatasks/internal/services"
	"mediatasks/internal/tvdb"
)

type fakeAPI struct {
	ids     []string
	added   []string
	removed []string
}

func (f *fakeAPI) Favorites(context.Context, tvdb.Credentials) ([]string, error) {
	return f.ids, nil
}

func (f *fakeAPI) AddFavorite(_ context.Context, _ tvdb.Credentials, id string) error {
	f.added = append(f.added, id)
	return nil
}

func (f *fakeAPI) RemoveFavorite(_ context.Context, _ tvdb.Credentials, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

type fakeLookup map[int64]string

func (f fakeLookup) Lookup(_ context.Context, id int64) (tvdb.Series, error) {
	name, ok := f[id]
	if !ok {
		return tvdb.Series{}, services.Wrap(services.ErrLookup, "test", "lookup", "", services.ErrNotFound)
	}
	return tvdb.Series{ID: id, Name: name}, nil
}

var favoritesRaw = map[string]any{"username": "user", "account_id": "ACC"}

func newRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	reg, err := plugins.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}
	return reg
}

func taskContext(reg *plugin.Registry, api *fakeAPI, test bool, entries ...*entry.Entry) *plugin.TaskContext {
	return &plugin.TaskContext{
		Name:     "test",
		Test:     test,
		Entries:  entries,
		Registry: reg,
		Logger:   logging.NewNop(),
		Deps: &plugin.Deps{
			Favorites: api,
			Series:    fakeLookup{1: "One", 2: "Two (2010)"},
			Logger:    logging.NewNop(),
		},
	}
}

func accepted(title, id string) *entry.Entry {
	e := entry.New(title)
	e.TVDBID = id
	e.Accept("test")
	return e
}

func TestRegistrations(t *testing.T) {
	reg := newRegistry(t)
	tests := []struct {
		name       string
		deprecated string
		priority   int
		phase      plugin.Phase
		list       bool
	}{
		{"thetvdb_list", "", plugin.DefaultPriority, plugin.PhaseInput, true},
		{"thetvdb_favorites", "thetvdb_favorites is deprecated, use list_add instead", plugin.DefaultPriority, plugin.PhaseInput, true},
		{"thetvdb_add", "thetvdb_add is deprecated, use list_add instead", plugin.LastPriority, plugin.PhaseOutput, false},
		{"thetvdb_remove", "thetvdb_remove is deprecated, use list_remove instead", plugin.LastPriority, plugin.PhaseOutput, false},
		{"list_add", "", plugin.LastPriority, plugin.PhaseOutput, false},
		{"list_remove", "", plugin.LastPriority, plugin.PhaseOutput, false},
		{"deluge_rename", "", plugin.DefaultPriority, plugin.PhaseModify, false},
	}
	for _, tt := range tests {
		info, ok := reg.Lookup(tt.name)
		if !ok {
			t.Fatalf("%s not registered", tt.name)
		}
		if info.Deprecated != tt.deprecated {
			t.Errorf("%s: deprecation %q, want %q", tt.name, info.Deprecated, tt.deprecated)
		}
		if info.Priority != tt.priority {
			t.Errorf("%s: priority %d, want %d", tt.name, info.Priority, tt.priority)
		}
		if !info.Handles(tt.phase) {
			t.Errorf("%s: expected %s handler", tt.name, tt.phase)
		}
		if info.InGroup(plugin.GroupList) != tt.list {
			t.Errorf("%s: list group membership %v", tt.name, !tt.list)
		}
		if info.APIVersion != 2 {
			t.Errorf("%s: api version %d", tt.name, info.APIVersion)
		}
	}
}

func TestFavoritesConfigSchema(t *testing.T) {
	reg := newRegistry(t)
	info, _ := reg.Lookup("thetvdb_list")
	bad := []any{
		nil,
		map[string]any{"username": "user"},
		map[string]any{"username": "user", "account_id": "ACC", "extra": true},
	}
	for _, raw := range bad {
		if _, err := info.Parse(raw); !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("Parse(%v): expected configuration error, got %v", raw, err)
		}
	}
	if _, err := info.Parse(map[string]any{"username": "u", "account_id": "a", "strip_dates": true}); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
}

func TestThetvdbListInput(t *testing.T) {
	reg := newRegistry(t)
	api := &fakeAPI{ids: []string{"2", "9", "1"}}
	for _, name := range []string{"thetvdb_list", "thetvdb_favorites"} {
		info, _ := reg.Lookup(name)
		cfg, err := info.Parse(map[string]any{"username": "u", "account_id": "a", "strip_dates": true})
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		entries, err := info.Input(context.Background(), taskContext(reg, api, false), cfg)
		if err != nil {
			t.Fatalf("%s input returned error: %v", name, err)
		}
		if len(entries) != 2 || entries[0].Title != "Two" || entries[1].Title != "One" {
			t.Fatalf("%s: unexpected entries %#v", name, entries)
		}
	}
}

func TestThetvdbInputWithoutClient(t *testing.T) {
	reg := newRegistry(t)
	info, _ := reg.Lookup("thetvdb_list")
	cfg, _ := info.Parse(favoritesRaw)
	tc := taskContext(reg, nil, false)
	tc.Deps = &plugin.Deps{}
	if _, err := info.Input(context.Background(), tc, cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestThetvdbAddAndRemove(t *testing.T) {
	reg := newRegistry(t)
	api := &fakeAPI{}
	batch := []*entry.Entry{accepted("A", "10"), accepted("B", ""), entry.New("C")}
	batch[2].TVDBID = "30"

	add, _ := reg.Lookup("thetvdb_add")
	cfg, _ := add.Parse(favoritesRaw)
	if err := add.Output(context.Background(), taskContext(reg, api, false, batch...), cfg); err != nil {
		t.Fatalf("thetvdb_add returned error: %v", err)
	}
	if len(api.added) != 1 || api.added[0] != "10" {
		t.Fatalf("expected only accepted entries with ids to be added, got %v", api.added)
	}

	remove, _ := reg.Lookup("thetvdb_remove")
	if err := remove.Output(context.Background(), taskContext(reg, api, false, batch...), cfg); err != nil {
		t.Fatalf("thetvdb_remove returned error: %v", err)
	}
	if len(api.removed) != 1 || api.removed[0] != "10" {
		t.Fatalf("unexpected removals: %v", api.removed)
	}
}

func TestOutputsSkipInTestMode(t *testing.T) {
	reg := newRegistry(t)
	api := &fakeAPI{}
	batch := []*entry.Entry{accepted("A", "10")}

	for _, name := range []string{"thetvdb_add", "thetvdb_remove"} {
		info, _ := reg.Lookup(name)
		cfg, _ := info.Parse(favoritesRaw)
		if err := info.Output(context.Background(), taskContext(reg, api, true, batch...), cfg); err != nil {
			t.Fatalf("%s returned error: %v", name, err)
		}
	}
	for _, name := range []string{"list_add", "list_remove"} {
		info, _ := reg.Lookup(name)
		cfg, err := info.Parse([]any{map[string]any{"thetvdb_list": favoritesRaw}})
		if err != nil {
			t.Fatalf("%s parse returned error: %v", name, err)
		}
		if err := info.Output(context.Background(), taskContext(reg, api, true, batch...), cfg); err != nil {
			t.Fatalf("%s returned error: %v", name, err)
		}
	}
	if len(api.added) != 0 || len(api.removed) != 0 {
		t.Fatalf("test mode must not touch thetvdb: added=%v removed=%v", api.added, api.removed)
	}
}

func TestListAddTargetsListPlugins(t *testing.T) {
	reg := newRegistry(t)
	api := &fakeAPI{}
	info, _ := reg.Lookup("list_add")
	cfg, err := info.Parse([]map[string]any{{"thetvdb_list": favoritesRaw}, {"thetvdb_favorites": favoritesRaw}})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if err := info.Output(context.Background(), taskContext(reg, api, false, accepted("A", "5")), cfg); err != nil {
		t.Fatalf("list_add returned error: %v", err)
	}
	if len(api.added) != 2 {
		t.Fatalf("expected one add per target list, got %v", api.added)
	}
}

func TestListAddConfigErrors(t *testing.T) {
	reg := newRegistry(t)
	info, _ := reg.Lookup("list_add")
	bad := []any{
		nil,
		[]any{},
		[]any{"thetvdb_list"},
		[]any{map[string]any{"deluge_rename": map[string]any{}}},
		[]any{map[string]any{"thetvdb_list": favoritesRaw, "thetvdb_favorites": favoritesRaw}},
		[]any{map[string]any{"thetvdb_list": map[string]any{"username": "u"}}},
	}
	for _, raw := range bad {
		if _, err := info.Parse(raw); !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("Parse(%v): expected configuration error, got %v", raw, err)
		}
	}
}

func TestDelugeRenameModify(t *testing.T) {
	reg := newRegistry(t)
	info, _ := reg.Lookup("deluge_rename")
	if _, err := info.Parse(map[string]any{"unknown": 1}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	cfg, err := info.Parse(map[string]any{"content_filename": "Show.S01E01", "main_file_ratio": 0.5})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	good := accepted("good", "")
	good.ContentSize = 1
	good.ContentFiles = []entry.ContentFile{{Path: "R/big.mkv", Size: 900 * 1024}, {Path: "R/small.nfo", Size: 100 * 1024}}
	broken := accepted("broken", "")
	skipped := entry.New("undecided")
	skipped.ContentSize = 1
	skipped.ContentFiles = []entry.ContentFile{{Path: "x.mkv", Size: 1024 * 1024}}

	tc := taskContext(reg, &fakeAPI{}, false, good, broken, skipped)
	if err := info.Modify(context.Background(), tc, cfg); err != nil {
		t.Fatalf("deluge_rename returned error: %v", err)
	}
	if good.ContentFiles[0].NewPath != "R/Show.S01E01.mkv" {
		t.Fatalf("unexpected main path %q", good.ContentFiles[0].NewPath)
	}
	if !broken.Failed() {
		t.Fatal("entry without content files must fail")
	}
	if skipped.ContentFiles[0].NewPath != "" {
		t.Fatal("only accepted entries are renamed")
	}
}
