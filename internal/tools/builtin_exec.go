package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RunCommandTool executes a shell command via "sh -c" inside the worktree,
// combining stdout/stderr and truncating long output (spec.md §4.10).
type RunCommandTool struct {
	// ReadOnly, when true, rejects commands matching blockedCommands before
	// ever spawning a shell (the ReadOnly tool profile's bash variant).
	ReadOnly bool
}

func (t RunCommandTool) Name() string { return "bash" }
func (t RunCommandTool) Description() string {
	if t.ReadOnly {
		return "Execute a read-only shell command in the worktree. Mutating commands are rejected."
	}
	return "Execute a shell command in the worktree. Use for git, build tools, tests."
}
func (RunCommandTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command":    map[string]any{"type": "string", "description": "Shell command to execute"},
			"timeout_ms": map[string]any{"type": "integer", "description": "Timeout in milliseconds (default: 120000)"},
		},
		"required": []string{"command"},
	}
}

func (t RunCommandTool) Execute(input map[string]any, ctx *Context) Result {
	command, ok := stringArg(input, "command")
	if !ok {
		return ErrorResult("command is required")
	}
	timeoutMs := intArg(input, "timeout_ms", 120_000)

	if t.ReadOnly {
		if blocked, ok := isBlockedReadOnly(command); ok {
			return ErrorResult("Command blocked in read-only mode: '%s' is not allowed. This bash tool only allows read operations.", blocked)
		}
	}

	runCtx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = ctx.Worktree

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return ErrorResult("Command timed out after %dms", timeoutMs)
	}

	out, errOut := stdout.String(), stderr.String()
	var combined string
	switch {
	case out == "" && errOut != "":
		combined = errOut
	case errOut == "":
		combined = out
	default:
		combined = fmt.Sprintf("%s\n\nSTDERR:\n%s", out, errOut)
	}

	const maxChars = 30_000
	if len(combined) > maxChars {
		combined = fmt.Sprintf("%s...\n[truncated, %d chars total]", combined[:maxChars], len(combined))
	}

	if err == nil {
		return OKResult(combined)
	}

	exitCode := -1
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if runCtx.Err() == nil {
		return ErrorResult("Failed to execute command: %s", err)
	}
	return ErrorResult("Exit code: %d\n%s", exitCode, combined)
}

// blockedCommands are shell verbs/phrases the ReadOnly tool profile's bash
// variant rejects, checked as a lowercase substring scan (spec.md §4.10,
// Testable Property 10).
var blockedCommands = []string{
	"rm", "rmdir", "mv", "cp", "touch", "mkdir", "chmod", "chown", "chgrp",
	"truncate", "shred",
	"vim", "vi", "nano", "emacs", "ed",
	"git push", "git reset", "git checkout", "git clean", "git stash",
	"git rebase", "git merge", "git commit", "git add", "git rm", "git mv",
	"git restore", "git cherry-pick",
	"apt", "apt-get", "yum", "dnf", "brew",
	"npm install", "npm uninstall", "pip install", "pip uninstall", "cargo install",
	"dd", "mkfs", "wget -o", "curl -o", "curl --output",
}

var blockedRedirects = []string{">", ">>"}

// isBlockedReadOnly reports whether command contains a blocked redirect or
// a blocked command at the start, after a pipe/semicolon/"&&", or after
// any space. A blocked command matches as a prefix with no word boundary,
// so a word that merely begins with one (e.g. "cpu") is also rejected.
func isBlockedReadOnly(command string) (string, bool) {
	lower := strings.ToLower(command)

	for _, redirect := range blockedRedirects {
		if !strings.Contains(command, redirect) {
			continue
		}
		for _, part := range strings.Fields(command) {
			if strings.Contains(part, redirect) && !strings.HasPrefix(part, "'") && !strings.HasPrefix(part, "\"") {
				return redirect, true
			}
		}
	}

	for _, blocked := range blockedCommands {
		if strings.HasPrefix(lower, blocked) ||
			strings.HasPrefix(lower, blocked+" ") ||
			strings.Contains(lower, " "+blocked) ||
			strings.Contains(lower, ";"+blocked) ||
			strings.Contains(lower, "; "+blocked) ||
			strings.Contains(lower, "|"+blocked) ||
			strings.Contains(lower, "| "+blocked) ||
			strings.Contains(lower, "&&"+blocked) ||
			strings.Contains(lower, "&& "+blocked) {
			return blocked, true
		}
	}
	return "", false
}
