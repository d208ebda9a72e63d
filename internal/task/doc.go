// Package task runs configured plugin pipelines.
//
// A Runner turns a config.Task into ordered plugin steps, then drives the
// entries through the input, filter, modify, and output phases. Runs are
// serialized across processes with a lock file in the state directory, and
// every run carries a fresh correlation id in its context and logs.
//
// Scheduler wraps a Runner with robfig/cron so tasks that declare a schedule
// run unattended under `mediatasks daemon`.
package task
