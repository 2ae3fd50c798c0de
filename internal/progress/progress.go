// Package progress implements ProgressStrategy: the bounded, per-engine
// memory of past-iteration outcomes re-surfaced into each new prompt
// (spec.md §4.2).
package progress

import (
	"fmt"
	"strings"
)

// Entry is one summarized iteration outcome.
type Entry struct {
	Iteration    uint32
	Command      string
	ExitCode     int
	DurationMs   int64
	FilesChanged []string
	Output       string // stdout, or stderr if stdout was empty
	Truncated    bool
}

// SystemCaptured is the default ProgressStrategy: a FIFO ring of at most
// MaxEntries formatted summaries, each capped to MaxOutputChars of
// trailing output. It has no shared state — each LoopEngine owns one.
type SystemCaptured struct {
	MaxEntries     int
	MaxOutputChars int

	entries []Entry
}

// NewSystemCaptured constructs a ring bounded by the given caps.
func NewSystemCaptured(maxEntries, maxOutputChars int) *SystemCaptured {
	if maxEntries <= 0 {
		maxEntries = 5
	}
	if maxOutputChars <= 0 {
		maxOutputChars = 2000
	}
	return &SystemCaptured{MaxEntries: maxEntries, MaxOutputChars: maxOutputChars}
}

// Record appends a new iteration outcome, evicting the oldest entry in
// FIFO order once MaxEntries is exceeded.
func (p *SystemCaptured) Record(iteration uint32, command string, exitCode int, durationMs int64, filesChanged []string, stdout, stderr string) {
	output := stdout
	if strings.TrimSpace(output) == "" {
		output = stderr
	}

	truncated := false
	if len(output) > p.MaxOutputChars {
		output = output[len(output)-p.MaxOutputChars:]
		truncated = true
	}

	p.entries = append(p.entries, Entry{
		Iteration:    iteration,
		Command:      command,
		ExitCode:     exitCode,
		DurationMs:   durationMs,
		FilesChanged: append([]string(nil), filesChanged...),
		Output:       output,
		Truncated:    truncated,
	})

	if len(p.entries) > p.MaxEntries {
		p.entries = p.entries[len(p.entries)-p.MaxEntries:]
	}
}

// Render emits the concatenated formatted summaries in insertion order,
// consumed by the template's {{progress}} variable.
func (p *SystemCaptured) Render() string {
	var b strings.Builder
	for _, e := range p.entries {
		b.WriteString(formatEntry(e))
		b.WriteString("\n")
	}
	return b.String()
}

func formatEntry(e Entry) string {
	changed := "none"
	if len(e.FilesChanged) > 0 {
		changed = strings.Join(e.FilesChanged, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- iteration %d ---\n", e.Iteration)
	fmt.Fprintf(&b, "command: %s\n", e.Command)
	fmt.Fprintf(&b, "exit_code: %d\n", e.ExitCode)
	fmt.Fprintf(&b, "duration_ms: %d\n", e.DurationMs)
	fmt.Fprintf(&b, "files_changed: %s\n", changed)
	if e.Truncated {
		b.WriteString("...[truncated]...\n")
	}
	b.WriteString(e.Output)
	return b.String()
}

// Len reports the number of entries currently held (test/debug use).
func (p *SystemCaptured) Len() int { return len(p.entries) }
