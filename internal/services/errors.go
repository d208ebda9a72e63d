package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrRemoteService = errors.New("remote service error")
	ErrLookup        = errors.New("lookup failure")
	ErrRender        = errors.New("render failure")
	ErrEntry         = errors.New("entry failure")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Scope describes how far a failure reaches.
type Scope string

const (
	// ScopeTask aborts the whole task run.
	ScopeTask Scope = "task"
	// ScopeEntry fails a single entry; the rest of the batch continues.
	ScopeEntry Scope = "entry"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureScope maps an error returned by a plugin phase to the extent of the
// damage. Lookup, render, and entry failures stay with the entry; everything
// else aborts the task.
func FailureScope(err error) Scope {
	switch {
	case errors.Is(err, ErrLookup), errors.Is(err, ErrRender), errors.Is(err, ErrEntry):
		return ScopeEntry
	default:
		return ScopeTask
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
