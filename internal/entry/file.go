package entry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ReadFile loads a JSON array of entries.
func ReadFile(path string) ([]*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode entries %s: %w", path, err)
	}
	for i, e := range entries {
		if e == nil {
			return nil, fmt.Errorf("decode entries %s: element %d is null", path, i)
		}
	}
	return entries, nil
}

// WriteFile stores entries as an indented JSON array, replacing path atomically.
func WriteFile(path string, entries []*Entry) error {
	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create entries directory: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".entries-%d.tmp", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write entries temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename entries temp: %w", err)
	}
	return nil
}
