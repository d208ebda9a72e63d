package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediatasks/internal/config"
	"mediatasks/internal/entry"
	"mediatasks/internal/logging"
	"mediatasks/internal/render"
	"mediatasks/internal/rename"
	"mediatasks/internal/services"
)

type renameOutput struct {
	Entry   string `json:"entry"`
	File    string `json:"file"`
	NewPath string `json:"new_path,omitempty"`
	Role    string `json:"role"`
	Error   string `json:"error,omitempty"`
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var (
		taskName string
		write    bool
		asJSON   bool
	)
	settings := rename.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "rename <entries.json>",
		Short: "Plan deluge_rename for a JSON batch of torrent entries",
		Long: "Plan deluge_rename for a JSON batch of torrent entries.\n\n" +
			"Settings come from the deluge_rename table of --task when given; flags\n" +
			"override individual settings. Use --write to store the new paths.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			raw, err := renameSettings(cfg, taskName)
			if err != nil {
				return err
			}
			overrideRenameSettings(cmd, raw, settings)
			reg, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			info, _ := reg.Lookup("deluge_rename")
			parsed, err := info.Parse(raw)
			if err != nil {
				return err
			}
			renamer, err := rename.NewRenamer(parsed.(rename.Config), render.New(), logger)
			if err != nil {
				return err
			}

			entries, err := entry.ReadFile(path)
			if err != nil {
				return err
			}
			var outputs []renameOutput
			for _, e := range entries {
				if e.Failed() {
					continue
				}
				plan, err := renamer.Process(cmd.Context(), e)
				if err != nil {
					outputs = append(outputs, renameOutput{Entry: e.Title, Role: "-", Error: err.Error()})
					continue
				}
				outputs = append(outputs, describePlan(e, plan)...)
			}

			if write {
				if err := entry.WriteFile(path, entries); err != nil {
					return err
				}
				logger.Info("entries written", logging.String("path", path))
			}
			if asJSON {
				return writeJSON(cmd, outputs)
			}
			if len(outputs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries")
				return nil
			}
			rows := make([][]string, 0, len(outputs))
			for _, o := range outputs {
				target := o.NewPath
				if o.Error != "" {
					target = "error: " + o.Error
				}
				rows = append(rows, []string{o.Entry, o.Role, o.File, target})
			}
			writeRows(cmd, []string{"Entry", "Role", "File", "New Path"}, rows, nil)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskName, "task", "", "Task whose deluge_rename configuration to use")
	cmd.Flags().StringVar(&settings.ContentFilename, "content-filename", "", "Template for the main file name")
	cmd.Flags().StringVar(&settings.ContainerDirectory, "container-directory", "", "Template for the directory holding the files")
	cmd.Flags().BoolVar(&settings.MainFileOnly, "main-file-only", settings.MainFileOnly, "Only download the main file")
	cmd.Flags().Float64Var(&settings.MainFileRatio, "main-file-ratio", settings.MainFileRatio, "Share of the content size the main file must exceed")
	cmd.Flags().BoolVar(&settings.HideSparseFiles, "hide-sparse-files", settings.HideSparseFiles, "Move non-main files into .sparse_files")
	cmd.Flags().BoolVar(&settings.KeepSubs, "keep-subs", settings.KeepSubs, "Rename the first .srt/.sub file with the main file")
	cmd.Flags().BoolVar(&write, "write", false, "Write the updated entries back to the file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

// renameSettings returns a copy of the deluge_rename table of the named task,
// or an empty table when no task is given.
func renameSettings(cfg *config.Config, taskName string) (map[string]any, error) {
	out := map[string]any{}
	taskName = strings.TrimSpace(taskName)
	if taskName == "" {
		return out, nil
	}
	t, ok := cfg.Task(taskName)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "rename", "resolve task", fmt.Sprintf("unknown task %q", taskName), nil)
	}
	raw, ok := t.Plugins["deluge_rename"]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "rename", "resolve task",
			fmt.Sprintf("task %q has no deluge_rename plugin", taskName), nil)
	}
	table, ok := raw.(map[string]any)
	if !ok && raw != nil {
		return nil, services.Wrap(services.ErrConfiguration, "rename", "resolve task",
			fmt.Sprintf("deluge_rename of task %q must be a table", taskName), nil)
	}
	for k, v := range table {
		out[k] = v
	}
	return out, nil
}

func overrideRenameSettings(cmd *cobra.Command, raw map[string]any, settings rename.Config) {
	flags := cmd.Flags()
	overrides := map[string]any{
		"content-filename":    settings.ContentFilename,
		"container-directory": settings.ContainerDirectory,
		"main-file-only":      settings.MainFileOnly,
		"main-file-ratio":     settings.MainFileRatio,
		"hide-sparse-files":   settings.HideSparseFiles,
		"keep-subs":           settings.KeepSubs,
	}
	for flag, value := range overrides {
		if flags.Changed(flag) {
			raw[strings.ReplaceAll(flag, "-", "_")] = value
		}
	}
}

func describePlan(e *entry.Entry, plan rename.Plan) []renameOutput {
	var out []renameOutput
	for _, u := range plan.Updates {
		role := "sparse"
		switch u.Index {
		case plan.Selection.Main:
			role = "main"
		case plan.Selection.Sub:
			role = "subs"
		}
		out = append(out, renameOutput{Entry: e.Title, File: e.ContentFiles[u.Index].Path, NewPath: u.NewPath, Role: role})
	}
	if len(out) == 0 {
		out = append(out, renameOutput{Entry: e.Title, Role: "-", NewPath: "(unchanged)"})
	}
	return out
}
