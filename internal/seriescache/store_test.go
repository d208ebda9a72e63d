package seriescache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mediatasks/internal/logging"
	"mediatasks/internal/seriescache"
	"mediatasks/internal/services"
	"mediatasks/internal/tvdb"
)

type stubFetcher struct {
	calls  map[int64]int
	series map[int64]string
}

func (s *stubFetcher) Series(_ context.Context, id int64) (*tvdb.Series, error) {
	if s.calls == nil {
		s.calls = map[int64]int{}
	}
	s.calls[id]++
	name, ok := s.series[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "tvdb", "series", "missing", nil)
	}
	return &tvdb.Series{ID: id, Name: name}, nil
}

func openStore(t *testing.T) *seriescache.Store {
	t.Helper()
	store, err := seriescache.Open(filepath.Join(t.TempDir(), "series.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStorePutGetAndPurge(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(48 * time.Hour)

	if err := store.Put(ctx, tvdb.Series{ID: 1, Name: "Old"}, old); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put(ctx, tvdb.Series{ID: 2, Name: "Recent"}, recent); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put(ctx, tvdb.Series{ID: 2, Name: "Renamed"}, recent); err != nil {
		t.Fatalf("Put upsert returned error: %v", err)
	}

	rec, ok, err := store.Get(ctx, 2)
	if err != nil || !ok {
		t.Fatalf("Get returned ok=%v err=%v", ok, err)
	}
	if rec.Series.Name != "Renamed" || !rec.FetchedAt.Equal(recent) {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if _, ok, _ := store.Get(ctx, 99); ok {
		t.Fatal("expected miss for unknown id")
	}

	removed, err := store.Purge(ctx, old.Add(time.Hour))
	if err != nil {
		t.Fatalf("Purge returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 purged row, got %d", removed)
	}
	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 1 || all[0].Series.ID != 2 {
		t.Fatalf("unexpected rows after purge: %#v", all)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.db")
	store, err := seriescache.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Put(context.Background(), tvdb.Series{ID: 5, Name: "Kept"}, time.Now()); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	_ = store.Close()

	reopened, err := seriescache.Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if _, ok, err := reopened.Get(context.Background(), 5); err != nil || !ok {
		t.Fatalf("expected row to survive reopen, ok=%v err=%v", ok, err)
	}
}

func TestResolverServesFreshRowsAndRefreshesStale(t *testing.T) {
	store := openStore(t)
	fetcher := &stubFetcher{series: map[int64]string{10: "Show"}}
	resolver := seriescache.NewResolver(store, fetcher, time.Hour, logging.NewNop())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		series, err := resolver.Lookup(ctx, 10)
		if err != nil {
			t.Fatalf("Lookup returned error: %v", err)
		}
		if series.Name != "Show" {
			t.Fatalf("unexpected series: %#v", series)
		}
	}
	if fetcher.calls[10] != 1 {
		t.Fatalf("expected one remote fetch, got %d", fetcher.calls[10])
	}

	if err := store.Put(ctx, tvdb.Series{ID: 10, Name: "Show"}, time.Now().Add(-2*time.Hour)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, err := resolver.Lookup(ctx, 10); err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if fetcher.calls[10] != 2 {
		t.Fatalf("expected stale row to be refetched, got %d fetches", fetcher.calls[10])
	}
}

func TestResolverDoesNotCacheNotFound(t *testing.T) {
	store := openStore(t)
	fetcher := &stubFetcher{series: map[int64]string{}}
	resolver := seriescache.NewResolver(store, fetcher, time.Hour, nil)

	for i := 0; i < 2; i++ {
		_, err := resolver.Lookup(context.Background(), 404)
		if !errors.Is(err, services.ErrLookup) || !errors.Is(err, services.ErrNotFound) {
			t.Fatalf("expected lookup/not found error, got %v", err)
		}
	}
	if fetcher.calls[404] != 2 {
		t.Fatalf("expected each miss to reach the API, got %d", fetcher.calls[404])
	}
	if _, ok, _ := store.Get(context.Background(), 404); ok {
		t.Fatal("not-found lookup should not be cached")
	}
}

func TestResolverWithoutStore(t *testing.T) {
	fetcher := &stubFetcher{series: map[int64]string{3: "Three"}}
	resolver := seriescache.NewResolver(nil, fetcher, time.Hour, nil)
	for i := 0; i < 2; i++ {
		if _, err := resolver.Lookup(context.Background(), 3); err != nil {
			t.Fatalf("Lookup returned error: %v", err)
		}
	}
	if fetcher.calls[3] != 2 {
		t.Fatalf("expected pass-through fetches, got %d", fetcher.calls[3])
	}
}

func TestResolverPruneDropsRowsPastTTL(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, tvdb.Series{ID: 1, Name: "Stale"}, time.Now().Add(-3*time.Hour)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put(ctx, tvdb.Series{ID: 2, Name: "Fresh"}, time.Now()); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if removed, err := seriescache.NewResolver(store, nil, 0, nil).Prune(ctx); err != nil || removed != 0 {
		t.Fatalf("zero ttl Prune = %d, %v; want 0, nil", removed, err)
	}
	removed, err := seriescache.NewResolver(store, nil, time.Hour, nil).Prune(ctx)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one stale row removed, got %d", removed)
	}
	if _, ok, _ := store.Get(ctx, 2); !ok {
		t.Fatal("fresh row should survive Prune")
	}
	if _, err := seriescache.NewResolver(nil, nil, time.Hour, nil).Prune(ctx); err != nil {
		t.Fatalf("Prune without store returned error: %v", err)
	}
}
