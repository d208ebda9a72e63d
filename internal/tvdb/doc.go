// Package tvdb is a small client for TheTVDB v2 JSON API.
//
// It covers the calls mediatasks needs: exchanging credentials for a bearer
// token, reading and editing a user's favorites, and looking up series names.
// Tokens are cached per credential set for the lifetime of the client and
// refreshed once when the API answers 401. Requests share a rate limiter.
package tvdb
