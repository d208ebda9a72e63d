// Package seriescache persists TheTVDB series lookups in SQLite so repeated
// task runs resolve favorite ids without a network round trip per series.
//
// Store owns the database. Resolver sits in front of a tvdb client and serves
// fresh rows from the store, falling back to the API once a row is older than
// the configured TTL. Not-found lookups are never cached.
package seriescache
