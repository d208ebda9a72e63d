package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediatasks/internal/task"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts task.Options
	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run configured tasks once",
		Long: "Run configured tasks once, in the given order or in configuration order\n" +
			"when none are named. --test skips every output that touches TheTVDB.",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newTaskRunner(ctx)
			if err != nil {
				return err
			}
			results, runErr := runner.Run(cmd.Context(), args, opts)
			if len(results) > 0 {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					rows = append(rows, []string{
						r.Task,
						strconv.Itoa(len(r.Entries)),
						strconv.Itoa(r.Accepted),
						strconv.Itoa(r.Rejected),
						strconv.Itoa(r.Failed),
						r.Duration.Round(time.Millisecond).String(),
					})
				}
				writeRows(cmd, []string{"Task", "Entries", "Accepted", "Rejected", "Failed", "Duration"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight})
			}
			if runErr != nil {
				return fmt.Errorf("run: %w", runErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Test, "test", false, "Simulate: skip outputs that change TheTVDB")
	cmd.Flags().BoolVar(&opts.WriteEntries, "write", false, "Write modified entries back to each task's entries_file")
	return cmd
}

func newTaskRunner(ctx *commandContext) (*task.Runner, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	reg, err := ctx.ensureRegistry()
	if err != nil {
		return nil, err
	}
	deps, err := ctx.ensureDeps()
	if err != nil {
		return nil, err
	}
	return task.NewRunner(cfg, reg, deps, deps.Logger)
}
