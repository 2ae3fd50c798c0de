package engine

import (
	"context"
	"time"

	"github.com/taskdaemon/taskdaemon/internal/domain"
	"github.com/taskdaemon/taskdaemon/internal/ids"
	"github.com/taskdaemon/taskdaemon/internal/tools"
)

// iterKind classifies runIteration's outcome (engine.rs's IterationResult).
type iterKind int

const (
	iterComplete iterKind = iota
	iterContinue
	iterRateLimited
	iterInterrupted
	iterBlocked
	iterError
)

type iterationResult struct {
	kind        iterKind
	retryAfter  time.Duration
	reason      string
	message     string
	recoverable bool
}

// runIteration executes one full refinement cycle: render the prompt,
// run the agentic inner loop, run validation, then persist the
// iteration's record (spec.md §4.1, steps 2-9).
func (e *Engine) runIteration(ctx context.Context) iterationResult {
	e.toolCallBuffer = nil
	e.iterInputTokens = 0
	e.iterOutputTokens = 0

	tmplCtx := e.buildTemplateContext()
	prompt := renderPrompt(e.cfg.LoopType.PromptTemplate, tmplCtx)

	toolCtx := tools.NewContext(e.cfg.Worktree, e.cfg.ExecID)
	if e.coordinator != nil {
		toolCtx.Coordinator = e.coordinator
	}
	toolCtx.ClearReads()
	toolCtx.MaxTokens = e.cfg.LoopType.MaxTokens

	toolDefs := e.toolExec.DefinitionsFor(e.cfg.LoopType.Tools)

	agentRes := e.runAgenticLoop(ctx, prompt, toolCtx, toolDefs)
	switch agentRes.kind {
	case agentRateLimited:
		return iterationResult{kind: iterRateLimited, retryAfter: agentRes.retryAfter}
	case agentError:
		return iterationResult{kind: iterError, message: agentRes.message, recoverable: agentRes.recoverable}
	}

	timeout := time.Duration(e.cfg.LoopType.IterationTimeoutMs) * time.Millisecond
	validation := runValidation(ctx, e.cfg.Worktree, e.cfg.LoopType.ValidationCommand, timeout)
	filesChanged := e.changedFiles()

	e.progressor.Record(e.iteration, e.cfg.LoopType.ValidationCommand, validation.ExitCode, validation.DurationMs, filesChanged, validation.Stdout, validation.Stderr)

	e.persistIteration(validation, filesChanged)

	if validation.passed(e.cfg.LoopType.SuccessExitCode) {
		e.log.Info("validation passed", "iteration", e.iteration)
		return iterationResult{kind: iterComplete}
	}

	e.log.Debug("validation failed, continuing", "iteration", e.iteration, "exit_code", validation.ExitCode)
	return iterationResult{kind: iterContinue}
}

// persistIteration writes this iteration's IterationLog and updates the
// execution's aggregate token/validation-time counters, when a
// StateHandle is attached. Persistence failures are logged, not fatal —
// the loop keeps running on a best-effort state trail (engine.rs does
// the same: state writes never abort run_iteration).
func (e *Engine) persistIteration(v validationResult, filesChanged []string) {
	if e.state == nil {
		return
	}

	log := &domain.IterationLog{
		ID:                ids.IterationLogID(e.cfg.ExecID, e.iteration),
		ExecutionID:       e.cfg.ExecID,
		Iteration:         e.iteration,
		ValidationCommand: e.cfg.LoopType.ValidationCommand,
		ExitCode:          v.ExitCode,
		Stdout:            v.Stdout,
		Stderr:            v.Stderr,
		DurationMs:        v.DurationMs,
		FilesChanged:      filesChanged,
		LLMInputTokens:    e.iterInputTokens,
		LLMOutputTokens:   e.iterOutputTokens,
		ToolCalls:         e.toolCallBuffer,
		CreatedAt:         nowMs(),
	}
	if _, err := e.state.CreateIterationLog(log); err != nil {
		e.log.Warn("failed to persist iteration log", "error", err)
	}

	exec, err := e.state.GetExecution(e.cfg.ExecID)
	if err != nil || exec == nil {
		e.log.Warn("failed to load execution for metrics update", "error", err)
		return
	}
	exec.Iteration = e.iteration
	exec.TotalInputTokens += e.iterInputTokens
	exec.TotalOutputTokens += e.iterOutputTokens
	exec.TotalValidationMs += v.DurationMs
	exec.Progress = e.progressor.Render()
	exec.UpdatedAt = nowMs()
	if err := e.state.UpdateExecution(exec); err != nil {
		e.log.Warn("failed to update execution metrics", "error", err)
	}
}
