package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record:
//
//	2026-10-18T09:30:00Z INFO [favorites/modify/deluge_rename] rename: planned "Show.S01E01" files=3 run=1a2b3c4d
//
// The task, phase, and plugin form the bracketed scope, the component
// prefixes the message, and the entry title follows it. Run ids are cut to
// eight characters; the JSON handler keeps them whole.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	color     bool

	scope  runScope
	group  string
	extras []byte
}

// runScope holds the attributes lifted into fixed positions of a line.
type runScope struct {
	task, phase, plugin, component, entry, run string
}

func (s *runScope) take(key string, v slog.Value) bool {
	var dst *string
	switch key {
	case FieldTask:
		dst = &s.task
	case FieldPhase:
		dst = &s.phase
	case FieldPlugin:
		dst = &s.plugin
	case FieldComponent:
		dst = &s.component
	case FieldEntry:
		dst = &s.entry
	case FieldRunID:
		dst = &s.run
	default:
		return false
	}
	*dst = plainValue(v)
	return true
}

func (s *runScope) overlay(o runScope) {
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&s.task, o.task)
	pick(&s.phase, o.phase)
	pick(&s.plugin, o.plugin)
	pick(&s.component, o.component)
	pick(&s.entry, o.entry)
	pick(&s.run, o.run)
}

func (s runScope) label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.task, s.phase, s.plugin} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource, color bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle fills scope fields missing from the logger's attributes from ctx,
// so InfoContext calls inside a run are tagged without WithContext.
func (h *consoleHandler) Handle(ctx context.Context, record slog.Record) error {
	var scope runScope
	for _, attr := range ContextFields(ctx) {
		scope.take(attr.Key, attr.Value)
	}
	scope.overlay(h.scope)

	extras := append([]byte(nil), h.extras...)
	record.Attrs(func(attr slog.Attr) bool {
		if h.group == "" && scope.take(attr.Key, attr.Value) {
			return true
		}
		extras = appendAttr(extras, h.group, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	line := make([]byte, 0, 160+len(extras))
	line = ts.UTC().AppendFormat(line, time.RFC3339)
	line = append(line, ' ')
	line = append(line, h.levelLabel(record.Level)...)
	line = append(line, ' ')
	if label := scope.label(); label != "" {
		line = append(line, '[')
		line = append(line, label...)
		line = append(line, "] "...)
	}
	if scope.component != "" {
		line = append(line, scope.component...)
		line = append(line, ": "...)
	}
	line = append(line, strings.TrimSpace(record.Message)...)
	if scope.entry != "" {
		line = append(line, ' ')
		line = strconv.AppendQuote(line, scope.entry)
	}
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			line = fmt.Appendf(line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	line = append(line, extras...)
	if scope.run != "" {
		line = append(line, " run="...)
		line = append(line, shortRunID(scope.run)...)
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.extras = append([]byte(nil), h.extras...)
	for _, attr := range attrs {
		if h.group == "" && clone.scope.take(attr.Key, attr.Value) {
			continue
		}
		clone.extras = appendAttr(clone.extras, h.group, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

func appendAttr(dst []byte, prefix string, attr slog.Attr) []byte {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			dst = appendAttr(dst, prefix, member)
		}
		return dst
	}
	dst = append(dst, ' ')
	dst = append(dst, prefix...)
	dst = append(dst, attr.Key...)
	dst = append(dst, '=')
	value := plainValue(attr.Value)
	if value == "" || strings.ContainsAny(value, " =\"\t\n") {
		return strconv.AppendQuote(dst, value)
	}
	return append(dst, value...)
}

func plainValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiFaint  = "\x1b[2m"
)

func (h *consoleHandler) levelLabel(level slog.Level) string {
	var label, color string
	switch {
	case level >= slog.LevelError:
		label, color = "ERROR", ansiRed
	case level >= slog.LevelWarn:
		label, color = "WARN", ansiYellow
	case level >= slog.LevelInfo:
		label = "INFO"
	default:
		label, color = "DEBUG", ansiFaint
	}
	if !h.color || color == "" {
		return label
	}
	return color + label + ansiReset
}
