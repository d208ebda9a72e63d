// Package preflight provides readiness checks for the filesystem paths and
// remote services mediatasks depends on.
//
// The CLI "mediatasks check" command runs RunAll and prints one row per
// check. The daemon runs the same checks at startup and logs failures
// without refusing to start, since a TheTVDB outage is usually transient.
package preflight
