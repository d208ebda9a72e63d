package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediatasks/internal/logging"
	"mediatasks/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, line)
	}
	return payload
}

func TestConsoleLayoutLiftsRunScope(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Level: "info", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithTask(context.Background(), "favorites")
	ctx = services.WithPhase(ctx, "input")
	ctx = services.WithRequestID(ctx, "0123456789abcdef")
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "task-runner"))
	logger.Info("accepted", logging.String(logging.FieldPlugin, "thetvdb_list"), logging.Entry("Show Name"), logging.Int("count", 2))
	logger.Debug("hidden")

	line := strings.TrimSpace(readLog(t, logPath))
	want := `INFO [favorites/input/thetvdb_list] task-runner: accepted "Show Name" count=2 run=01234567`
	if !strings.HasSuffix(line, want) {
		t.Fatalf("console line = %q, want suffix %q", line, want)
	}
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", line)
	}
}

func TestConsoleReadsScopeFromContext(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithPlugin(services.WithTask(context.Background(), "prune"), "thetvdb_remove")
	logger.InfoContext(ctx, "removed", logging.String("note", "two words"), logging.Error(nil))

	line := readLog(t, logPath)
	if !strings.Contains(line, `INFO [prune/thetvdb_remove] removed note="two words"`) {
		t.Fatalf("expected scope from context, got %q", line)
	}
	if strings.Contains(line, "error=") {
		t.Fatalf("nil error should add nothing: %q", line)
	}
}

func TestConsoleGroupsPrefixKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "group.log")
	logger, err := logging.New(logging.Options{Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithGroup("plan").Info("built", logging.String(logging.FieldTask, "not lifted"), logging.Int("files", 3))

	line := readLog(t, logPath)
	if !strings.Contains(line, `INFO built plan.task="not lifted" plan.files=3`) {
		t.Fatalf("expected grouped keys, got %q", line)
	}
}

func TestJSONKeysAndContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithTask(context.Background(), "favorites")
	ctx = services.WithRequestID(ctx, "run-1")
	logger.WarnContext(ctx, "something odd", logging.Int("count", 2), logging.Error(errors.New("boom")))
	logging.WithContext(ctx, logger).InfoContext(ctx, "bound once")

	lines := strings.Split(strings.TrimSpace(readLog(t, logPath)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	first := decodeLine(t, lines[0])
	if first["msg"] != "something odd" || first["level"] != "warn" || first["error"] != "boom" {
		t.Fatalf("unexpected payload: %v", first)
	}
	if first[logging.FieldTask] != "favorites" || first[logging.FieldRunID] != "run-1" {
		t.Fatalf("expected context fields, got %v", first)
	}
	if _, ok := first["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", first)
	}
	if strings.Count(lines[1], `"run_id"`) != 1 {
		t.Fatalf("run_id should appear once when already bound: %q", lines[1])
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "no main file", "rename_no_main_file", logging.String(logging.FieldErrorHint, "lower main_file_ratio"))

	payload := decodeLine(t, strings.TrimSpace(readLog(t, logPath)))
	if payload[logging.FieldEventType] != "rename_no_main_file" {
		t.Fatalf("expected event type, got %v", payload)
	}
	if payload[logging.FieldErrorHint] != "lower main_file_ratio" {
		t.Fatalf("expected caller hint to win, got %v", payload)
	}
	if payload[logging.FieldImpact] == nil {
		t.Fatalf("expected default impact, got %v", payload)
	}
}
