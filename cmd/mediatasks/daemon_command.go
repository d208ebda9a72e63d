package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediatasks/internal/logging"
	"mediatasks/internal/preflight"
	"mediatasks/internal/task"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var opts task.Options
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run scheduled tasks until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), ctx, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Test, "test", false, "Simulate: skip outputs that change TheTVDB")
	cmd.Flags().BoolVar(&opts.WriteEntries, "write", false, "Write modified entries back to each task's entries_file")
	return cmd
}

func runDaemon(cmdCtx context.Context, ctx *commandContext, opts task.Options) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	runner, err := newTaskRunner(ctx)
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	for _, result := range preflight.Failed(preflight.RunAll(signalCtx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldImpact, "scheduled tasks depending on it may fail"),
			logging.String(logging.FieldErrorHint, "run `mediatasks check` for details"),
		)
	}

	scheduler, err := task.NewScheduler(runner, opts, logger)
	if err != nil {
		return err
	}
	if scheduler.Len() == 0 {
		logging.WarnWithContext(logger, "no scheduled tasks configured", "daemon_idle",
			logging.String(logging.FieldImpact, "the daemon has nothing to run"),
			logging.String(logging.FieldErrorHint, "set schedule on at least one [[tasks]] entry"),
		)
	}
	logger.Info("mediatasks daemon started", logging.Int("scheduled", scheduler.Len()), logging.String("lock", cfg.LockPath()))
	return scheduler.Run(signalCtx)
}
