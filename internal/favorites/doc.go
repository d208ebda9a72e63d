// Package favorites exposes a TheTVDB user's favorite series as a mutable set
// of entries keyed by tvdb_id.
//
// The list is materialized lazily on first read and cached for the lifetime
// of the TVDBSet. Add invalidates the cache whether or not the remote call
// succeeded; Remove leaves it untouched, so a list read after Remove returns
// the stale cached items until something invalidates it. Add and Remove are
// best effort: remote failures are logged, never returned.
package favorites
