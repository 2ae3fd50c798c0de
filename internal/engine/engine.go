// Package engine implements LoopEngine (spec.md §4.1): the per-execution
// outer refinement cycle, its agentic inner loop, rebase handling, and
// validation dispatch.
//
// Grounded closely on original_source/td/src/loop/engine.rs: Run,
// runIteration, runAgenticLoop, handleRebase, buildTemplateContext, and
// renderPrompt map onto engine.rs's run/run_iteration/run_agentic_loop/
// handle_rebase/build_template_context/render_prompt respectively.
// Rust's owned `&mut self` async methods become blocking methods on an
// *Engine value: LoopManager runs one Engine per goroutine (spec.md
// §4.9), so blocking here is the idiomatic Go analogue of engine.rs's
// one-task-per-execution model.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskdaemon/taskdaemon/internal/coordinator"
	"github.com/taskdaemon/taskdaemon/internal/domain"
	"github.com/taskdaemon/taskdaemon/internal/llmclient"
	"github.com/taskdaemon/taskdaemon/internal/looptype"
	"github.com/taskdaemon/taskdaemon/internal/progress"
	"github.com/taskdaemon/taskdaemon/internal/scheduler"
	"github.com/taskdaemon/taskdaemon/internal/tools"
)

// CoordinatorHandle is the subset of *coordinator.Handle's surface a
// LoopEngine drives directly: subscribing to main_updated, draining its
// own mailbox, and answering queries it cannot otherwise handle
// (spec.md §4.1 step 1, §4.1.3).
type CoordinatorHandle interface {
	Subscribe(topic string)
	TryRecv() (coordinator.Message, bool)
	Query(target, question string) (string, error)
	Share(target, shareType, data string) error
	ReplyQuery(queryID, answer string) error
}

// StateHandle is the subset of *store.Store a LoopEngine persists
// through: one IterationLog and one aggregate-metrics update per
// iteration (engine.rs's state.create_iteration_log /
// state.get_execution / state.update_execution).
type StateHandle interface {
	CreateIterationLog(l *domain.IterationLog) (string, error)
	GetExecution(id string) (*domain.LoopExecution, error)
	UpdateExecution(e *domain.LoopExecution) error
}

// Config is everything a LoopEngine needs beyond its collaborators
// (spec.md §4.1: "constructed with execution id, resolved LoopType
// config, ..., a worktree path, ..., an execution-context map, and a
// repository root").
type Config struct {
	ExecID           string
	LoopType         looptype.Definition
	Worktree         string
	RepoRoot         string
	Branch           string // remote branch rebase targets; defaults to "main"
	ExecutionContext map[string]string
	Priority         domain.Priority
}

// Engine runs one LoopExecution to a terminal outcome.
type Engine struct {
	cfg Config
	log *slog.Logger

	llm         llmclient.Client
	scheduler   *scheduler.Scheduler
	coordinator CoordinatorHandle
	state       StateHandle
	toolExec    *tools.Executor
	progressor  *progress.SystemCaptured

	iteration uint32
	status    domain.ExecStatus

	// Per-iteration scratch state, reset at the start of every iteration.
	toolCallBuffer   []domain.ToolCallRecord
	iterInputTokens  int64
	iterOutputTokens int64
}

// Status reports the engine's current LoopExecution status.
func (e *Engine) Status() domain.ExecStatus { return e.status }

// New constructs an Engine. llm and toolExec are required; Scheduler,
// Coordinator, and State are optional collaborators attached via the
// With* methods (spec.md §4.1: "an optional Scheduler, an optional
// Coordinator handle, an optional StateActor handle").
func New(cfg Config, llm llmclient.Client, toolExec *tools.Executor) *Engine {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	return &Engine{
		cfg:        cfg,
		llm:        llm,
		toolExec:   toolExec,
		status:     domain.ExecRunning,
		progressor: progress.NewSystemCaptured(cfg.LoopType.ProgressMaxEntries, cfg.LoopType.ProgressMaxChars),
		log:        slog.With("exec_id", cfg.ExecID, "loop_type", cfg.LoopType.Name),
	}
}

// WithScheduler attaches a Scheduler for LLM-call rate limiting.
func (e *Engine) WithScheduler(s *scheduler.Scheduler) *Engine {
	e.scheduler = s
	return e
}

// WithCoordinator attaches a Coordinator handle for inter-loop messaging.
func (e *Engine) WithCoordinator(c CoordinatorHandle) *Engine {
	e.coordinator = c
	return e
}

// WithState attaches a StateActor handle for persisting iteration logs
// and execution aggregates.
func (e *Engine) WithState(s StateHandle) *Engine {
	e.state = s
	return e
}

// WithLogger overrides the engine's logger (tests use this to assert on
// log output; production wiring uses the exec_id-scoped default).
func (e *Engine) WithLogger(l *slog.Logger) *Engine {
	e.log = l
	return e
}

// Iteration reports the current iteration count.
func (e *Engine) Iteration() uint32 { return e.iteration }

// OutcomeKind classifies how Run returned.
type OutcomeKind string

const (
	OutcomeComplete    OutcomeKind = "complete"
	OutcomeFailed      OutcomeKind = "failed"
	OutcomeInterrupted OutcomeKind = "interrupted"
	OutcomeBlocked     OutcomeKind = "blocked"
)

// Outcome is Run's terminal result — engine.rs's IterationResult,
// collapsed to the subset a LoopManager needs in order to persist the
// execution's final status (spec.md §4.9).
type Outcome struct {
	Kind       OutcomeKind
	Iterations uint32
	Reason     string
}

// Run executes the outer refinement cycle (spec.md §4.1) until a
// terminal signal is received or max_iterations is exhausted.
func (e *Engine) Run(ctx context.Context) Outcome {
	if e.coordinator != nil {
		e.coordinator.Subscribe("main_updated")
	}
	e.log.Info("loop engine starting", "max_iterations", e.cfg.LoopType.MaxIterations)

	for e.iteration < uint32(e.cfg.LoopType.MaxIterations) {
		if out, stop := e.pollCoordinator(); stop {
			return out
		}

		e.iteration++
		e.log.Debug("iteration starting", "iteration", e.iteration)
		res := e.runIteration(ctx)

		switch res.kind {
		case iterComplete:
			e.log.Info("loop complete", "iterations", e.iteration)
			return Outcome{Kind: OutcomeComplete, Iterations: e.iteration}
		case iterContinue:
			time.Sleep(500 * time.Millisecond)
		case iterRateLimited:
			e.log.Warn("rate limited, sleeping", "retry_after", res.retryAfter)
			time.Sleep(res.retryAfter)
			e.iteration-- // don't count a rate-limited attempt
		case iterInterrupted:
			e.log.Info("loop interrupted", "reason", res.reason)
			return Outcome{Kind: OutcomeInterrupted, Iterations: e.iteration, Reason: res.reason}
		case iterBlocked:
			e.log.Warn("loop blocked", "reason", res.reason)
			return Outcome{Kind: OutcomeBlocked, Iterations: e.iteration, Reason: res.reason}
		case iterError:
			if !res.recoverable {
				e.log.Error("non-recoverable error", "message", res.message)
				return Outcome{Kind: OutcomeFailed, Iterations: e.iteration, Reason: res.message}
			}
			e.log.Warn("recoverable error, continuing", "message", res.message)
		}
	}

	e.log.Warn("max iterations exceeded")
	return Outcome{Kind: OutcomeFailed, Iterations: e.iteration, Reason: "max iterations exceeded"}
}

func nowMs() int64 { return time.Now().UnixMilli() }
