package favorites

import (
	"context"

	"mediatasks/internal/entry"
)

// Set is a remote collection of entries with set semantics. Implementations
// back list input plugins and the list_add/list_remove outputs.
type Set interface {
	// List returns the current members.
	List(ctx context.Context) ([]*entry.Entry, error)
	// Contains reports whether a member matches e.
	Contains(ctx context.Context, e *entry.Entry) (bool, error)
	// Find returns the member matching e, or nil.
	Find(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
	// Add inserts e. Failures are logged.
	Add(ctx context.Context, e *entry.Entry)
	// Remove deletes e. Failures are logged.
	Remove(ctx context.Context, e *entry.Entry)
	// InvalidateCache forces the next read to refetch.
	InvalidateCache()
	// Len returns the number of members.
	Len(ctx context.Context) (int, error)
	// Online reports whether the set performs live network actions and must be
	// skipped in test mode.
	Online() bool
}

// AddAll adds every entry to s in order.
func AddAll(ctx context.Context, s Set, entries []*entry.Entry) {
	for _, e := range entries {
		s.Add(ctx, e)
	}
}

// RemoveAll removes every entry from s in order.
func RemoveAll(ctx context.Context, s Set, entries []*entry.Entry) {
	for _, e := range entries {
		s.Remove(ctx, e)
	}
}
