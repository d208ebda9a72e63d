// Package logging builds the slog loggers used across mediatasks.
//
// The console handler lays each line out around the run it belongs to: the
// task, phase, and plugin in brackets, then the component, the message, and the
// entry title. The JSON handler keeps every field flat and adds the run_id from
// the context so one run can be grepped out of a shared log file. Both handlers
// read the task, plugin, phase, and run id from the context passed to the
// *Context logging methods.
package logging
