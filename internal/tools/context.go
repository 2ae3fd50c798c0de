// Package tools implements ToolContext + ToolExecutor (spec.md §4.10):
// sandboxed path validation, per-iteration read-tracking, and the
// builtin tool set the agentic inner loop dispatches against.
package tools

import (
	"fmt"
	"path/filepath"
	"sync"
)

// CoordinatorHandle is the subset of internal/coordinator's handle that
// tools need, kept as an interface here to avoid an import cycle between
// tools and coordinator.
type CoordinatorHandle interface {
	Query(target, question string) (string, error)
	Share(target, shareType, data string) error
}

// Context carries per-execution tool state (spec.md §4.10). One Context
// is owned exclusively by a LoopEngine for the duration of its run; the
// read-tracking set is cleared at the start of every iteration.
type Context struct {
	Worktree       string
	ExecID         string
	SandboxEnabled bool
	MaxTokens      int
	Coordinator    CoordinatorHandle

	mu        sync.Mutex
	readFiles map[string]bool
}

// NewContext creates a sandboxed context bound to worktree.
func NewContext(worktree, execID string) *Context {
	return &Context{
		Worktree:       worktree,
		ExecID:         execID,
		SandboxEnabled: true,
		readFiles:      make(map[string]bool),
	}
}

// NewUnsandboxedContext creates a context with sandbox checks disabled,
// for tests.
func NewUnsandboxedContext(worktree, execID string) *Context {
	c := NewContext(worktree, execID)
	c.SandboxEnabled = false
	return c
}

// TrackRead records path as having been read this iteration.
func (c *Context) TrackRead(path string) {
	norm := c.normalize(path)
	c.mu.Lock()
	c.readFiles[norm] = true
	c.mu.Unlock()
}

// WasRead reports whether path was read (or written) this iteration.
func (c *Context) WasRead(path string) bool {
	norm := c.normalize(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readFiles[norm]
}

// ClearReads empties the read-tracking set; called at each iteration start.
func (c *Context) ClearReads() {
	c.mu.Lock()
	c.readFiles = make(map[string]bool)
	c.mu.Unlock()
}

func (c *Context) normalize(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Worktree, path)
}

// SandboxViolationError is returned by ValidatePath on escape attempts.
type SandboxViolationError struct {
	Path     string
	Worktree string
}

func (e *SandboxViolationError) Error() string {
	return fmt.Sprintf("sandbox violation: %s escapes worktree %s", e.Path, e.Worktree)
}

// ValidatePath implements spec.md §4.10's validate_path: normalize,
// canonicalize (resolving symlinks) the path, or if it does not exist its
// parent directory, then require the canonical worktree as a prefix.
func (c *Context) ValidatePath(path string) (string, error) {
	normalized := c.normalize(path)
	if !c.SandboxEnabled {
		return normalized, nil
	}

	canonical := canonicalizeBestEffort(normalized)
	worktreeCanonical := canonicalizeBestEffort(c.Worktree)

	rel, err := filepath.Rel(worktreeCanonical, canonical)
	if err != nil || rel == ".." || hasDotDotPrefix(rel) {
		return "", &SandboxViolationError{Path: path, Worktree: c.Worktree}
	}
	return canonical, nil
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[:2] == ".." && (len(rel) == 2 || rel[2] == filepath.Separator)
}
