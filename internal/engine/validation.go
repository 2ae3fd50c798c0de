package engine

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// timeoutExitCode is the distinguished negative exit code reported when
// a validation command is killed for running past its timeout (spec.md
// §4.1.4). No original_source file defines this constant or the timeout
// marker text below — see DESIGN.md's internal/engine entry for why
// validation.go is grounded directly on spec.md prose rather than a
// ported Rust source.
const timeoutExitCode = -1

const timeoutStderrMarker = "validation command timed out"

// validationResult is the outcome of one validation run.
type validationResult struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	DurationMs int64
}

// passed reports whether the run matches the loop type's configured
// success exit code.
func (v validationResult) passed(successExitCode int) bool {
	return v.ExitCode == successExitCode
}

// runValidation spawns `sh -c validationCommand` in the worktree with a
// hard wall-clock timeout, capturing stdout and stderr separately
// without interleaving them (spec.md §4.1.4). On timeout the process is
// killed and exitCode is reported as timeoutExitCode with a marker
// appended to stderr.
func runValidation(parent context.Context, worktree, validationCommand string, timeout time.Duration) validationResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", validationCommand)
	cmd.Dir = worktree

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	durationMs := time.Since(start).Milliseconds()

	if ctx.Err() == context.DeadlineExceeded {
		stderrText := stderr.String()
		if stderrText != "" {
			stderrText += "\n"
		}
		stderrText += timeoutStderrMarker
		return validationResult{
			ExitCode:   timeoutExitCode,
			Stdout:     stdout.String(),
			Stderr:     stderrText,
			DurationMs: durationMs,
		}
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = timeoutExitCode
		}
	}

	return validationResult{
		ExitCode:   exitCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: durationMs,
	}
}
