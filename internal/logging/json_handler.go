package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// jsonHandler wraps slog's JSON handler and adds the task, phase, plugin, and
// run_id carried by the context when the logger does not already bind them.
// Lines from one run can be selected with a single run_id filter.
type jsonHandler struct {
	inner   slog.Handler
	bound   map[string]bool
	grouped bool
}

func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) *jsonHandler {
	return &jsonHandler{
		inner: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			AddSource:   addSource,
			ReplaceAttr: renameJSONKeys,
		}),
	}
}

func renameJSONKeys(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339Nano))
		}
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(filepath.Base(src.File) + ":" + strconv.Itoa(src.Line))
		}
	}
	return attr
}

func (h *jsonHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *jsonHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.grouped {
		return h.inner.Handle(ctx, record)
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return h.inner.Handle(ctx, record)
	}
	present := make(map[string]bool, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		present[attr.Key] = true
		return true
	})
	record = record.Clone()
	for _, field := range fields {
		if !h.bound[field.Key] && !present[field.Key] {
			record.AddAttrs(field)
		}
	}
	return h.inner.Handle(ctx, record)
}

func (h *jsonHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &jsonHandler{inner: h.inner.WithAttrs(attrs), bound: h.bound, grouped: h.grouped}
	if !h.grouped {
		clone.bound = make(map[string]bool, len(h.bound)+len(attrs))
		for key := range h.bound {
			clone.bound[key] = true
		}
		for _, attr := range attrs {
			clone.bound[attr.Key] = true
		}
	}
	return clone
}

func (h *jsonHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &jsonHandler{inner: h.inner.WithGroup(name), bound: h.bound, grouped: true}
}
