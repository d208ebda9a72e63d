package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mediatasks/internal/config"
	"mediatasks/internal/entry"
	"mediatasks/internal/logging"
	"mediatasks/internal/plugin"
	"mediatasks/internal/services"
)

// ErrLocked is returned when another process holds the run lock.
var ErrLocked = errors.New("another mediatasks run is in progress")

// Options control a single run.
type Options struct {
	// Test runs the task without side effects on online services.
	Test bool
	// WriteEntries stores the final batch back to the task's entries_file.
	WriteEntries bool
}

// Result summarizes one task run.
type Result struct {
	Task     string
	RunID    string
	Entries  []*entry.Entry
	Accepted int
	Rejected int
	Failed   int
	Duration time.Duration
}

// Step is one plugin of a task with its decoded configuration.
type Step struct {
	Plugin plugin.Info
	Config any
}

// Task is a validated pipeline ready to run.
type Task struct {
	Name        string
	EntriesFile string
	Steps       []Step
}

// Runner builds and executes tasks.
type Runner struct {
	cfg      *config.Config
	registry *plugin.Registry
	deps     *plugin.Deps
	logger   *slog.Logger
	now      func() time.Time

	// held serializes runs inside the process. TryLock on a flock.Flock that
	// already holds the file lock succeeds again.
	held sync.Mutex
	lock *flock.Flock
}

// NewRunner constructs a runner. The lock file lives at cfg.LockPath().
func NewRunner(cfg *config.Config, registry *plugin.Registry, deps *plugin.Deps, logger *slog.Logger) (*Runner, error) {
	if cfg == nil || registry == nil {
		return nil, errors.New("task runner requires config and plugin registry")
	}
	if deps == nil {
		deps = &plugin.Deps{}
	}
	return &Runner{
		cfg:      cfg,
		registry: registry,
		deps:     deps,
		logger:   logging.NewComponentLogger(logger, "task-runner"),
		lock:     flock.New(cfg.LockPath()),
		now:      time.Now,
	}, nil
}

// Build decodes every plugin configuration of def and orders the steps by
// descending priority, then name. Unknown plugins and invalid plugin
// configuration are reported as services.ErrConfiguration.
func (r *Runner) Build(def config.Task) (*Task, error) {
	if len(def.Plugins) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, def.Name, "build task", "no plugins configured", nil)
	}
	steps := make([]Step, 0, len(def.Plugins))
	for name, raw := range def.Plugins {
		info, ok := r.registry.Lookup(name)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, def.Name, "build task",
				fmt.Sprintf("unknown plugin %q", name), nil)
		}
		cfg, err := info.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", def.Name, err)
		}
		steps = append(steps, Step{Plugin: info, Config: cfg})
	}
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Plugin.Priority != steps[j].Plugin.Priority {
			return steps[i].Plugin.Priority > steps[j].Plugin.Priority
		}
		return steps[i].Plugin.Name < steps[j].Plugin.Name
	})
	return &Task{Name: def.Name, EntriesFile: def.EntriesFile, Steps: steps}, nil
}

// Run executes the named tasks in order under the run lock. No names means
// every configured task.
func (r *Runner) Run(ctx context.Context, names []string, opts Options) ([]Result, error) {
	defs, err := r.resolve(names)
	if err != nil {
		return nil, err
	}
	tasks := make([]*Task, 0, len(defs))
	for _, def := range defs {
		t, err := r.Build(def)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	unlock, err := r.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()

	results := make([]Result, 0, len(tasks))
	for _, t := range tasks {
		res, err := r.Execute(ctx, t, opts)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (r *Runner) resolve(names []string) ([]config.Task, error) {
	if len(names) == 0 {
		if len(r.cfg.Tasks) == 0 {
			return nil, services.Wrap(services.ErrConfiguration, "task-runner", "resolve", "no tasks configured", nil)
		}
		return r.cfg.Tasks, nil
	}
	defs := make([]config.Task, 0, len(names))
	for _, name := range names {
		def, ok := r.cfg.Task(name)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "task-runner", "resolve",
				fmt.Sprintf("unknown task %q", name), nil)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (r *Runner) acquire() (func(), error) {
	if !r.held.TryLock() {
		return nil, ErrLocked
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		r.held.Unlock()
		return nil, err
	}
	ok, err := r.lock.TryLock()
	if err != nil {
		r.held.Unlock()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		r.held.Unlock()
		return nil, ErrLocked
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := r.lock.Unlock(); err != nil {
				r.logger.Warn("failed to release run lock", logging.Error(err))
			}
			r.held.Unlock()
		})
	}, nil
}

// Execute runs t once without taking the run lock. A phase handler error
// classified as task scope aborts the run; entry scope errors are logged and
// the run continues.
func (r *Runner) Execute(ctx context.Context, t *Task, opts Options) (Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRequestID(services.WithTask(ctx, t.Name), runID)
	logger := logging.WithContext(ctx, r.logger)
	start := r.now()
	result := Result{Task: t.Name, RunID: runID}

	for _, step := range t.Steps {
		if step.Plugin.Deprecated != "" {
			logging.WarnWithContext(logger, step.Plugin.Deprecated, "plugin_deprecated",
				logging.String(logging.FieldPlugin, step.Plugin.Name),
				logging.String(logging.FieldImpact, "the plugin may be removed in a future release"),
				logging.String(logging.FieldErrorHint, "update the task configuration"),
			)
		}
	}
	logger.Info("task started", logging.Int("plugins", len(t.Steps)), logging.Bool("test", opts.Test))

	tc := &plugin.TaskContext{
		Name:     t.Name,
		Test:     opts.Test,
		Deps:     r.deps,
		Registry: r.registry,
	}

	if t.EntriesFile != "" {
		entries, err := entry.ReadFile(t.EntriesFile)
		if err != nil {
			return result, services.Wrap(services.ErrConfiguration, t.Name, "read entries", t.EntriesFile, err)
		}
		tc.Entries = append(tc.Entries, entries...)
	}

	for _, phase := range plugin.Phases {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := r.runPhase(ctx, t, tc, phase); err != nil {
			result.Entries = tc.Entries
			result.Duration = r.now().Sub(start)
			logger.Error("task aborted",
				logging.String(logging.FieldPhase, string(phase)),
				logging.Error(err),
				logging.String(logging.FieldEventType, "task_aborted"),
			)
			return result, err
		}
	}

	result.Entries = tc.Entries
	result.Accepted = len(entry.Filter(tc.Entries, entry.Accepted))
	result.Rejected = len(entry.Filter(tc.Entries, entry.Rejected))
	result.Failed = len(entry.Filter(tc.Entries, entry.Failed))
	result.Duration = r.now().Sub(start)

	if opts.WriteEntries && t.EntriesFile != "" {
		if err := entry.WriteFile(t.EntriesFile, tc.Entries); err != nil {
			return result, err
		}
		logger.Info("entries written", logging.String("path", t.EntriesFile))
	}

	logger.Info("task finished",
		logging.Int("accepted", result.Accepted),
		logging.Int("rejected", result.Rejected),
		logging.Int("failed", result.Failed),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (r *Runner) runPhase(ctx context.Context, t *Task, tc *plugin.TaskContext, phase plugin.Phase) error {
	ctx = services.WithPhase(ctx, string(phase))
	if phase == plugin.PhaseFilter {
		// No filter plugins exist; every undecided entry is accepted.
		for _, e := range tc.Entries {
			if e.State == entry.Undecided {
				e.Accept("no filters")
			}
		}
		return nil
	}

	all := tc.Entries
	if phase != plugin.PhaseInput {
		tc.Entries = entry.Live(all)
	}
	var produced []*entry.Entry
	for _, step := range t.Steps {
		if !step.Plugin.Handles(phase) {
			continue
		}
		pctx := services.WithPlugin(ctx, step.Plugin.Name)
		tc.Logger = logging.WithContext(pctx, r.logger)
		tc.Logger.Debug("running plugin")

		var err error
		switch phase {
		case plugin.PhaseInput:
			var entries []*entry.Entry
			entries, err = step.Plugin.Input(pctx, tc, step.Config)
			produced = append(produced, entries...)
		case plugin.PhaseModify:
			err = step.Plugin.Modify(pctx, tc, step.Config)
		case plugin.PhaseOutput:
			err = step.Plugin.Output(pctx, tc, step.Config)
		}
		if err == nil {
			continue
		}
		if services.FailureScope(err) == services.ScopeEntry {
			logging.WarnWithContext(tc.Logger, "plugin reported an entry failure", "plugin_entry_failure",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the task continues with the remaining entries"),
			)
			continue
		}
		tc.Entries = all
		return fmt.Errorf("%s phase: %s: %w", phase, step.Plugin.Name, err)
	}
	tc.Logger = nil
	tc.Entries = append(all, produced...)
	return nil
}
