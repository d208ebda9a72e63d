package rename_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"mediatasks/internal/entry"
	"mediatasks/internal/logging"
	"mediatasks/internal/rename"
	"mediatasks/internal/services"
)

const mib = 1024 * 1024

func newRenamer(t *testing.T, mutate func(*rename.Config)) *rename.Renamer {
	t.Helper()
	cfg := rename.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := rename.NewRenamer(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewRenamer returned error: %v", err)
	}
	return r
}

func torrent(title string) *entry.Entry {
	e := entry.New(title)
	e.ContentSize = 10
	e.ContentFiles = []entry.ContentFile{
		{Path: "Release/release.mkv", Size: 9.5 * mib},
		{Path: "Release/release.srt", Size: mib / 10},
		{Path: "Release/sample.mkv", Size: 3 * mib / 10},
		{Path: "Release/release.nfo", Size: mib / 10},
	}
	return e
}

func TestConfigValidation(t *testing.T) {
	for _, ratio := range []float64{-0.5, math.NaN(), math.Inf(1)} {
		cfg := rename.DefaultConfig()
		cfg.MainFileRatio = ratio
		if _, err := rename.NewRenamer(cfg, nil, nil); !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("ratio %v: expected configuration error, got %v", ratio, err)
		}
	}
	for _, ratio := range []float64{0, 1, 1.5} {
		cfg := rename.DefaultConfig()
		cfg.MainFileRatio = ratio
		if _, err := rename.NewRenamer(cfg, nil, nil); err != nil {
			t.Fatalf("ratio %v: unexpected error %v", ratio, err)
		}
	}
}

func TestRatioAboveOneRenamesNothing(t *testing.T) {
	r := newRenamer(t, func(c *rename.Config) {
		c.ContentFilename = "Show - S01E01"
		c.MainFileRatio = 1.5
	})
	e := torrent("Show.S01E01")
	before := append([]entry.ContentFile(nil), e.ContentFiles...)

	plan, err := r.Process(context.Background(), e)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if plan.Selection.HasMain() || len(plan.Updates) != 0 {
		t.Fatalf("expected no main file and no updates, got %+v", plan)
	}
	if e.Failed() {
		t.Fatal("entry should not fail when nothing is renamed")
	}
	for i := range before {
		if e.ContentFiles[i].Name() != before[i].Name() {
			t.Fatalf("file %d changed: %q -> %q", i, before[i].Name(), e.ContentFiles[i].Name())
		}
	}
}

func TestProcessFailsEntryWithoutContent(t *testing.T) {
	r := newRenamer(t, func(c *rename.Config) { c.ContentFilename = "x" })

	missingFiles := entry.New("no files")
	missingFiles.ContentSize = 10
	if _, err := r.Process(context.Background(), missingFiles); !errors.Is(err, services.ErrEntry) {
		t.Fatalf("expected entry error, got %v", err)
	}
	if !missingFiles.Failed() {
		t.Fatal("expected entry to be failed")
	}

	missingSize := torrent("no size")
	missingSize.ContentSize = 0
	if _, err := r.Process(context.Background(), missingSize); !errors.Is(err, services.ErrEntry) {
		t.Fatalf("expected entry error, got %v", err)
	}
}

func TestProcessDisabledIsNoop(t *testing.T) {
	r := newRenamer(t, func(c *rename.Config) { c.HideSparseFiles = true })
	e := torrent("t")
	before := e.Clone()
	plan, err := r.Process(context.Background(), e)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(plan.Updates) != 0 {
		t.Fatalf("expected no updates, got %#v", plan.Updates)
	}
	for i := range e.ContentFiles {
		if e.ContentFiles[i].NewPath != before.ContentFiles[i].NewPath {
			t.Fatalf("file %d modified", i)
		}
	}
}

func TestProcessRenamesWithTemplateAndHidesSparse(t *testing.T) {
	r := newRenamer(t, func(c *rename.Config) {
		c.ContentFilename = "{{.series_name}}.S01E01"
		c.MainFileOnly = true
		c.HideSparseFiles = true
	})
	e := torrent("release")
	e.SeriesName = "Show"

	if _, err := r.Process(context.Background(), e); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	want := []string{
		"Release/Show.S01E01.mkv",
		"Release/Show.S01E01.srt",
		"Release/.sparse_files/sample.mkv",
		"Release/.sparse_files/release.nfo",
	}
	for i, f := range e.ContentFiles {
		if f.NewPath != want[i] {
			t.Fatalf("file %d: new_path %q, want %q", i, f.NewPath, want[i])
		}
	}
	if d := e.ContentFiles[0].Download; d == nil || !*d {
		t.Fatal("main file must be marked for download")
	}
	if d := e.ContentFiles[1].Download; d == nil || !*d {
		t.Fatal("sub file must be marked for download")
	}
	if e.ContentFiles[2].Download != nil {
		t.Fatal("sparse file download flag must stay unset")
	}
}

func TestProcessEntryOverridesAndContainer(t *testing.T) {
	r := newRenamer(t, func(c *rename.Config) {
		c.ContentFilename = "ignored"
		c.ContainerDirectory = "Configured"
	})
	e := torrent("release")
	e.ContentFilename = "Season 1/Show: Pilot"
	e.ContainerDirectory = "TV"

	plan, err := r.Process(context.Background(), e)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if plan.Target != "TV/Season 1/" {
		t.Fatalf("unexpected target %q", plan.Target)
	}
	if got := e.ContentFiles[0].NewPath; got != "TV/Season 1/Show - Pilot.mkv" {
		t.Fatalf("unexpected main path %q", got)
	}
	if got := e.ContentFiles[3].NewPath; got != "" {
		t.Fatalf("container_directory must not relocate other files, got %q", got)
	}
}

func TestProcessNoMainFileLeavesBatch(t *testing.T) {
	r := newRenamer(t, func(c *rename.Config) { c.ContentFilename = "x" })
	e := entry.New("even split")
	e.ContentSize = 2
	e.ContentFiles = []entry.ContentFile{{Path: "a.mkv", Size: mib}, {Path: "b.mkv", Size: mib}}

	plan, err := r.Process(context.Background(), e)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if plan.Selection.HasMain() || len(plan.Updates) != 0 {
		t.Fatalf("expected no main file, got %#v", plan)
	}
	if e.ContentFiles[0].NewPath != "" || e.Failed() {
		t.Fatalf("entry must be untouched: %#v", e)
	}
}

func TestProcessRenderFailureIsEmpty(t *testing.T) {
	r := newRenamer(t, func(c *rename.Config) {
		c.ContentFilename = "{{.does_not_exist}}"
		c.MainFileOnly = true
		c.HideSparseFiles = true
	})
	e := torrent("release")
	if _, err := r.Process(context.Background(), e); err != nil {
		t.Fatalf("render failure must not fail the entry: %v", err)
	}
	if e.ContentFiles[0].NewPath != "" {
		t.Fatalf("main file must keep its name, got %q", e.ContentFiles[0].NewPath)
	}
	if e.ContentFiles[2].NewPath != "Release/.sparse_files/sample.mkv" {
		t.Fatalf("sparse hiding still applies, got %q", e.ContentFiles[2].NewPath)
	}
}
