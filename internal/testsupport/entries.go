package testsupport

import (
	"path/filepath"
	"testing"

	"mediatasks/internal/entry"
)

// WriteEntries stores entries as a JSON batch under dir and returns the path.
func WriteEntries(t testing.TB, dir string, entries ...*entry.Entry) string {
	t.Helper()

	path := filepath.Join(dir, "entries.json")
	if err := entry.WriteFile(path, entries); err != nil {
		t.Fatalf("write entries: %v", err)
	}
	return path
}

// ReadEntries loads a JSON batch written by a task run.
func ReadEntries(t testing.TB, path string) []*entry.Entry {
	t.Helper()

	entries, err := entry.ReadFile(path)
	if err != nil {
		t.Fatalf("read entries: %v", err)
	}
	return entries
}

// Torrent builds an undecided entry from files; the content size is the sum
// of their sizes in MiB.
func Torrent(title string, files ...entry.ContentFile) *entry.Entry {
	e := entry.New(title)
	var total int64
	for _, f := range files {
		total += f.Size
	}
	e.ContentFiles = files
	e.ContentSize = float64(total) / (1024 * 1024)
	return e
}
