package entry_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"mediatasks/internal/entry"
)

func TestStateTransitions(t *testing.T) {
	e := entry.New("Show")
	if e.State != entry.Undecided {
		t.Fatalf("expected undecided, got %v", e.State)
	}
	e.Accept("input")
	if !e.Accepted() {
		t.Fatal("expected accepted")
	}
	e.Fail("missing content_files")
	e.Accept("again")
	if !e.Failed() || e.Reason != "missing content_files" {
		t.Fatalf("failed entry must stay failed, got %v %q", e.State, e.Reason)
	}
}

func TestContentFileName(t *testing.T) {
	f := entry.ContentFile{Path: "a/b.mkv"}
	if f.Name() != "a/b.mkv" {
		t.Fatalf("unexpected name %q", f.Name())
	}
	f.NewPath = "c/d.mkv"
	if f.Name() != "c/d.mkv" {
		t.Fatalf("expected new path to win, got %q", f.Name())
	}
}

func TestGetAndSet(t *testing.T) {
	e := entry.New("Show")
	e.Set("tvdb_id", 123)
	e.Set("quality", "720p")
	if v, ok := e.Get("tvdb_id"); !ok || v != "123" {
		t.Fatalf("unexpected tvdb_id %v %v", v, ok)
	}
	if v, ok := e.Get("quality"); !ok || v != "720p" {
		t.Fatalf("unexpected quality %v %v", v, ok)
	}
	if _, ok := e.Get("url"); ok {
		t.Fatal("empty url should report missing")
	}
	m := e.Map()
	if m["title"] != "Show" || m["quality"] != "720p" {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestCloneIsDeep(t *testing.T) {
	yes := true
	e := &entry.Entry{Title: "x", ContentFiles: []entry.ContentFile{{Path: "a", Download: &yes}}, Fields: map[string]any{"k": 1}}
	c := e.Clone()
	*c.ContentFiles[0].Download = false
	c.ContentFiles[0].Path = "b"
	c.Fields["k"] = 2
	if !*e.ContentFiles[0].Download || e.ContentFiles[0].Path != "a" || e.Fields["k"] != 1 {
		t.Fatalf("clone aliased original: %#v", e)
	}
}

func TestFileRoundTripKeepsStateAndTriStateDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "entries.json")
	yes := true
	in := []*entry.Entry{
		{Title: "A", ContentSize: 1.5, ContentFiles: []entry.ContentFile{{Path: "a.mkv", Size: 10, NewPath: "b.mkv", Download: &yes}, {Path: "a.nfo", Size: 1}}},
		{Title: "B", TVDBID: "42", State: entry.Failed, Reason: "boom"},
	}
	if err := entry.WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	out, err := entry.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	files := out[0].ContentFiles
	if files[0].Download == nil || !*files[0].Download || files[1].Download != nil {
		t.Fatalf("tri-state download not preserved: %#v", files)
	}
	if out[1].State != entry.Failed || out[1].Reason != "boom" {
		t.Fatalf("state not preserved: %#v", out[1])
	}
}

func TestStateJSON(t *testing.T) {
	var e entry.Entry
	if err := json.Unmarshal([]byte(`{"title":"x","state":"Accepted"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.State != entry.Accepted {
		t.Fatalf("expected accepted, got %v", e.State)
	}
	err := json.Unmarshal([]byte(`{"title":"x","state":"weird"}`), &e)
	if err == nil || !strings.Contains(err.Error(), "weird") {
		t.Fatalf("expected unknown state error, got %v", err)
	}
}

func TestFilterAndLive(t *testing.T) {
	a, b, c := entry.New("a"), entry.New("b"), entry.New("c")
	a.Accept("")
	b.Fail("x")
	batch := []*entry.Entry{a, b, c}
	if got := entry.Filter(batch, entry.Accepted); len(got) != 1 || got[0] != a {
		t.Fatalf("unexpected accepted: %v", got)
	}
	if got := entry.Live(batch); len(got) != 2 || got[1] != c {
		t.Fatalf("unexpected live: %v", got)
	}
}
