// Package main hosts the mediatasks CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the TheTVDB favorites list, the
// deluge_rename planner, task runs, the cron daemon, preflight checks, and
// configuration scaffolding. It centralizes configuration resolution, logger
// setup, and the TheTVDB client and series cache wiring so subcommands can
// focus on output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
