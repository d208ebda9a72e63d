package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mediatasks/internal/logging"
)

// Scheduled describes a registered cron job.
type Scheduled struct {
	Task     string
	Schedule string
	Next     time.Time
}

// Scheduler runs tasks on their cron schedules. Overlapping firings of the
// same job are skipped, and firings that find the run lock held are logged
// and dropped.
type Scheduler struct {
	runner *Runner
	logger *slog.Logger
	cron   *cron.Cron
	opts   Options

	mu      sync.Mutex
	jobs    map[string]cron.EntryID
	running bool
	ctx     context.Context
}

// NewScheduler registers every configured task that has a schedule. Tasks
// are built up front so configuration errors surface before the daemon
// starts.
func NewScheduler(runner *Runner, opts Options, logger *slog.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, errors.New("scheduler requires a task runner")
	}
	logger = logging.NewComponentLogger(logger, "scheduler")
	s := &Scheduler{
		runner: runner,
		logger: logger,
		opts:   opts,
		jobs:   make(map[string]cron.EntryID),
		ctx:    context.Background(),
	}
	s.cron = cron.New(
		cron.WithLogger(cronLogger{logger: logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: logger})),
	)

	for _, def := range runner.cfg.Tasks {
		if def.Schedule == "" {
			continue
		}
		t, err := runner.Build(def)
		if err != nil {
			return nil, err
		}
		id, err := s.cron.AddFunc(def.Schedule, func() { s.fire(t) })
		if err != nil {
			return nil, fmt.Errorf("schedule task %s: %w", def.Name, err)
		}
		s.jobs[def.Name] = id
	}
	return s, nil
}

// Len returns the number of scheduled tasks.
func (s *Scheduler) Len() int {
	return len(s.jobs)
}

// Entries lists scheduled tasks sorted by name. Next is zero until the
// scheduler has started.
func (s *Scheduler) Entries() []Scheduled {
	out := make([]Scheduled, 0, len(s.jobs))
	for _, def := range s.runner.cfg.Tasks {
		id, ok := s.jobs[def.Name]
		if !ok {
			continue
		}
		out = append(out, Scheduled{Task: def.Name, Schedule: def.Schedule, Next: s.cron.Entry(id).Next})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task < out[j].Task })
	return out
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// in-flight jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	s.running = true
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	for _, e := range s.Entries() {
		s.logger.Info("task scheduled",
			logging.String(logging.FieldTask, e.Task),
			logging.String("schedule", e.Schedule),
			logging.String("next", e.Next.Format(time.RFC3339)),
		)
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) fire(t *Task) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	unlock, err := s.runner.acquire()
	if err != nil {
		logging.WarnWithContext(s.logger, "scheduled run skipped", "scheduled_run_skipped",
			logging.String(logging.FieldTask, t.Name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the task runs again at its next scheduled time"),
		)
		return
	}
	defer unlock()

	if _, err := s.runner.Execute(ctx, t, s.opts); err != nil {
		logging.ErrorWithContext(s.logger, "scheduled run failed", "scheduled_run_failed",
			logging.String(logging.FieldTask, t.Name),
			logging.Error(err),
		)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{logging.Error(err)}, keysAndValues...)...)
}
