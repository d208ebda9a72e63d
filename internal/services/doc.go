// Package services defines shared utilities consumed by plugins and the task
// runner.
//
// Key responsibilities:
//   - Context helpers that stamp task names, plugin names, phases, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     task-aborting (configuration, remote service) or entry-scoped (lookup,
//     render, missing entry data).
//
// Use these helpers when wiring new plugin logic so error handling and
// observability stay uniform across tasks.
package services
