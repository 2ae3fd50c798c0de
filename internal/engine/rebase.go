package engine

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/taskdaemon/taskdaemon/internal/domain"
)

// extractBranch pulls "branch" out of a main_updated notification's JSON
// payload, falling back to def when absent or unparseable (engine.rs's
// handle_rebase defaults the branch to "main").
func extractBranch(data, def string) string {
	var payload struct {
		Branch string `json:"branch"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil || payload.Branch == "" {
		return def
	}
	return payload.Branch
}

// handleRebase runs the engine's worktree through `git fetch` + `git
// rebase` against branch (spec.md §4.1.3). A fetch failure is logged but
// does not fail the rebase — the local remote-tracking ref may already
// be current enough to rebase against. A rebase failure aborts the
// rebase, sets the status to Blocked, and returns an error describing it.
func (e *Engine) handleRebase(branch string) error {
	e.status = domain.ExecRebasing
	e.log.Info("rebasing onto remote", "branch", branch)

	if out, err := e.runGit("fetch", "origin", branch); err != nil {
		e.log.Warn("git fetch failed, attempting rebase anyway", "error", err, "output", out)
	}

	if out, err := e.runGit("rebase", "origin/"+branch); err != nil {
		abortOut, abortErr := e.runGit("rebase", "--abort")
		if abortErr != nil {
			e.log.Warn("git rebase --abort also failed", "error", abortErr, "output", abortOut)
		}
		e.status = domain.ExecBlocked
		return fmt.Errorf("rebase failed: %s", strings.TrimSpace(out))
	}

	e.status = domain.ExecRunning
	return nil
}

// runGit runs git with args in the engine's worktree, returning combined
// stdout+stderr for error reporting.
func (e *Engine) runGit(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = e.cfg.Worktree
	out, err := cmd.CombinedOutput()
	return string(out), err
}
