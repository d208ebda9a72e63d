package rename

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"mediatasks/internal/entry"
	"mediatasks/internal/logging"
	"mediatasks/internal/pathscrub"
	"mediatasks/internal/render"
	"mediatasks/internal/services"
)

const bytesPerMiB = 1024 * 1024

// Config is the deluge_rename plugin schema.
type Config struct {
	ContentFilename    string  `toml:"content_filename"`
	MainFileOnly       bool    `toml:"main_file_only"`
	MainFileRatio      float64 `toml:"main_file_ratio"`
	ContainerDirectory string  `toml:"container_directory"`
	HideSparseFiles    bool    `toml:"hide_sparse_files"`
	KeepSubs           bool    `toml:"keep_subs"`
}

// DefaultConfig returns the schema defaults.
func DefaultConfig() Config {
	return Config{
		MainFileRatio: 0.90,
		KeepSubs:      true,
	}
}

// Validate checks value ranges. A main_file_ratio of 1 or more is accepted;
// no file can exceed it, so nothing gets renamed.
func (c Config) Validate() error {
	if c.MainFileRatio < 0 || math.IsNaN(c.MainFileRatio) || math.IsInf(c.MainFileRatio, 0) {
		return services.Wrap(services.ErrConfiguration, "deluge_rename", "validate config",
			fmt.Sprintf("main_file_ratio must be a finite non-negative number, got %v", c.MainFileRatio), nil)
	}
	return nil
}

// Enabled reports whether the configuration asks for any renaming at all.
func (c Config) Enabled() bool {
	return c.ContentFilename != "" || c.MainFileOnly
}

// Renamer applies the heuristic to entries.
type Renamer struct {
	cfg      Config
	renderer render.Renderer
	logger   *slog.Logger
}

// NewRenamer validates cfg and returns a Renamer. A nil renderer uses
// render.New().
func NewRenamer(cfg Config, renderer render.Renderer, logger *slog.Logger) (*Renamer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		renderer = render.New()
	}
	return &Renamer{
		cfg:      cfg,
		renderer: renderer,
		logger:   logging.NewComponentLogger(logger, "deluge_rename"),
	}, nil
}

// Plan computes the rename plan for e without modifying it. The returned
// error is marked services.ErrEntry when e lacks content files or a content
// size. A disabled configuration or a batch without a main file yields a plan
// with no updates.
func (r *Renamer) Plan(ctx context.Context, e *entry.Entry) (Plan, error) {
	noMain := Plan{Selection: Selection{Main: -1, Sub: -1}}
	if len(e.ContentFiles) == 0 {
		return noMain, services.Wrap(services.ErrEntry, "deluge_rename", "plan", "`content_files` not present in entry", nil)
	}
	if e.ContentSize <= 0 {
		return noMain, services.Wrap(services.ErrEntry, "deluge_rename", "plan", "unable to determine total content size", nil)
	}
	if !r.cfg.Enabled() {
		return noMain, nil
	}

	logger := logging.WithContext(ctx, r.logger).With(logging.Args(logging.Entry(e.Title))...)
	total := e.ContentSize * bytesPerMiB
	files := e.ContentFiles
	sel := Select(files, total, r.cfg.MainFileRatio, r.cfg.KeepSubs)
	if !sel.HasMain() {
		logging.WarnWithContext(logger,
			fmt.Sprintf("no files are > %d%% of content size, no files renamed", int(r.cfg.MainFileRatio*100)),
			"rename_no_main_file",
			logging.Int("file_count", len(files)),
			logging.String(logging.FieldImpact, "torrent files keep their original names"),
			logging.String(logging.FieldErrorHint, "lower main_file_ratio if this torrent should be renamed"),
		)
		return Plan{Selection: sel}, nil
	}

	layout := Layout{
		Filename:           r.renderField(logger, e, "content_filename", pick(e.ContentFilename, r.cfg.ContentFilename)),
		Directory:          r.renderField(logger, e, "container_directory", pick(e.ContainerDirectory, r.cfg.ContainerDirectory)),
		FilenameConfigured: r.cfg.ContentFilename != "",
		KeepSubs:           r.cfg.KeepSubs,
		HideSparse:         r.cfg.MainFileOnly && r.cfg.HideSparseFiles,
	}
	plan := Build(files, sel, layout)

	for _, u := range plan.Updates {
		switch u.Index {
		case sel.Main:
			logger.Info("main file will be renamed",
				logging.String("from", files[u.Index].Name()), logging.String("to", u.NewPath))
		case sel.Sub:
			logger.Info("subs file will be renamed",
				logging.String("from", files[u.Index].Name()), logging.String("to", u.NewPath))
		default:
			logger.Debug("hiding sparse file",
				logging.String("from", files[u.Index].Name()), logging.String("to", u.NewPath))
		}
	}
	return plan, nil
}

// Process plans and applies the rename to e in place. Entry-level failures
// fail e and are returned.
func (r *Renamer) Process(ctx context.Context, e *entry.Entry) (Plan, error) {
	plan, err := r.Plan(ctx, e)
	if err != nil {
		e.Fail(err.Error())
		return plan, err
	}
	if len(plan.Updates) > 0 {
		e.ContentFiles = Apply(e.ContentFiles, plan.Updates)
	}
	return plan, nil
}

// renderField renders and scrubs a template. Render failures are logged and
// produce "".
func (r *Renamer) renderField(logger *slog.Logger, e *entry.Entry, field, tmpl string) string {
	if tmpl == "" {
		return ""
	}
	rendered, err := r.renderer.Render(tmpl, e)
	if err != nil {
		logging.ErrorWithContext(logger, "error rendering "+field, "rename_render_failed",
			logging.String("field", field),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the template against the entry's fields"),
		)
		return ""
	}
	return pathscrub.Scrub(rendered)
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
