// Package entry defines the unit of work that flows through a task: a titled
// item carrying series metadata and, for torrents, the list of content files.
//
// Entries move between undecided, accepted, rejected, and failed states. A
// failed entry is excluded from later phases but stays in the batch so the
// reason can be reported. Batches load from and save to JSON files.
package entry
