package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/taskdaemon/taskdaemon/internal/domain"
	"github.com/taskdaemon/taskdaemon/internal/llmclient"
	"github.com/taskdaemon/taskdaemon/internal/tools"
)

// agentKind classifies how runAgenticLoop finished.
type agentKind int

const (
	agentComplete agentKind = iota
	agentRateLimited
	agentError
)

type agenticResult struct {
	kind        agentKind
	retryAfter  time.Duration
	message     string
	recoverable bool
}

// runAgenticLoop drives one fresh LLM conversation to completion (spec.md
// §4.1.2; engine.rs's run_agentic_loop). The conversation starts with a
// single user message — the rendered prompt — and is discarded once the
// iteration ends: every iteration gets a clean context window.
func (e *Engine) runAgenticLoop(ctx context.Context, prompt string, toolCtx *tools.Context, toolDefs []tools.Definition) agenticResult {
	systemPrompt := fmt.Sprintf(
		"You are an AI assistant working on a task. Complete the task using the available tools.\nWorking directory: %s\nLoop type: %s",
		e.cfg.Worktree, e.cfg.LoopType.Name,
	)

	llmTools := make([]llmclient.ToolSpec, len(toolDefs))
	for i, d := range toolDefs {
		llmTools[i] = llmclient.ToolSpec{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
	}

	messages := []llmclient.Message{{Role: llmclient.RoleUser, Text: prompt}}

	maxTurns := e.cfg.LoopType.MaxTurnsPerIteration
	for turn := 1; ; turn++ {
		if turn > maxTurns {
			break
		}

		req := llmclient.Request{
			SystemPrompt: systemPrompt,
			Messages:     messages,
			Tools:        llmTools,
			MaxTokens:    e.cfg.LoopType.MaxTokens,
		}

		turnID := fmt.Sprintf("%s-turn-%d", e.cfg.ExecID, turn)
		if e.scheduler != nil {
			if err := e.scheduler.WaitForSlot(turnID, e.cfg.Priority); err != nil {
				return agenticResult{kind: agentError, message: fmt.Sprintf("Scheduler error: %v", err), recoverable: true}
			}
		}

		outcome := e.llm.Complete(ctx, req)

		if e.scheduler != nil {
			e.scheduler.Complete(turnID)
		}

		if outcome.RateLimited != nil {
			retryAfter := time.Duration(outcome.RateLimited.RetryAfterSeconds) * time.Second
			if outcome.RateLimited.RetryAfterSeconds < 0 {
				retryAfter = 60 * time.Second
			}
			return agenticResult{kind: agentRateLimited, retryAfter: retryAfter}
		}
		if outcome.Err != nil {
			return agenticResult{kind: agentError, message: outcome.Err.Error(), recoverable: outcome.Recoverable}
		}

		resp := outcome.Response
		e.iterInputTokens += int64(resp.Usage.InputTokens)
		e.iterOutputTokens += int64(resp.Usage.OutputTokens)

		assistantMsg := e.buildAssistantMessage(resp)
		messages = append(messages, assistantMsg)

		switch resp.StopReason {
		case llmclient.StopEndTurn, llmclient.StopStopSequence:
			return agenticResult{kind: agentComplete}

		case llmclient.StopToolUse:
			results := e.executeTools(resp.ToolCalls, toolCtx)
			messages = append(messages, llmclient.Message{Role: llmclient.RoleUser, Blocks: results})

		case llmclient.StopMaxTokens:
			messages = append(messages, llmclient.Message{
				Role: llmclient.RoleUser,
				Text: "Continue from where you left off. Your previous response was truncated.",
			})

		default:
			return agenticResult{kind: agentComplete}
		}
	}

	return agenticResult{kind: agentComplete}
}

// buildAssistantMessage turns a completion response into the multi-block
// assistant message appended to the conversation: a text block (if any
// content), followed by one ToolUseBlock per requested call.
func (e *Engine) buildAssistantMessage(resp *llmclient.Response) llmclient.Message {
	var blocks []llmclient.Block
	if resp.Content != "" {
		blocks = append(blocks, llmclient.TextBlock{Text: resp.Content})
	}
	for _, call := range resp.ToolCalls {
		blocks = append(blocks, call)
	}
	return llmclient.Message{Role: llmclient.RoleAssistant, Blocks: blocks}
}

// executeTools dispatches every requested call in order (spec.md
// §4.1.5: unknown tool names are error results, not aborts), recording a
// ToolCallRecord summary per call and returning the tool-result blocks
// to append to the conversation.
func (e *Engine) executeTools(calls []llmclient.ToolUseBlock, toolCtx *tools.Context) []llmclient.Block {
	results := make([]llmclient.Block, 0, len(calls))
	for _, call := range calls {
		res := e.toolExec.Execute(call.Name, call.Input, toolCtx)

		e.toolCallBuffer = append(e.toolCallBuffer, domain.ToolCallRecord{
			Name:          call.Name,
			ArgsSummary:   fmt.Sprintf("%v", call.Input),
			ResultSummary: res.Content,
			IsError:       res.IsError,
		})

		results = append(results, llmclient.ToolResultBlock{
			ToolUseID: call.ID,
			Content:   res.Content,
			IsError:   res.IsError,
		})
	}
	return results
}
