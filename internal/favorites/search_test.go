package favorites_test

import (
	"testing"

	"mediatasks/internal/entry"
	"mediatasks/internal/favorites"
)

func TestSearchRanksClosestFirst(t *testing.T) {
	items := []*entry.Entry{
		entry.New("The Expanse"),
		entry.New("Doctor Who"),
		entry.New("Expanse"),
	}
	matches := favorites.Search(items, "expanse")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Entry.Title != "Expanse" || matches[1].Entry.Title != "The Expanse" {
		t.Fatalf("unexpected order: %q, %q", matches[0].Entry.Title, matches[1].Entry.Title)
	}
	if all := favorites.Search(items, ""); len(all) != 3 {
		t.Fatalf("empty query should return everything, got %d", len(all))
	}
}
