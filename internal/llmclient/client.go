package llmclient

import "context"

// Client is the abstract, stateless LLM completion contract (spec.md
// §4.3). Concrete implementations (Anthropic, OpenAI, ...) live outside
// this module; LoopEngine depends only on this interface.
type Client interface {
	// Complete sends one independent request and returns its outcome.
	Complete(ctx context.Context, req Request) Outcome

	// Stream is like Complete but delivers incremental chunks to sink as
	// they arrive, in addition to returning the assembled outcome.
	Stream(ctx context.Context, req Request, sink ChunkSink) Outcome
}

// Assemble reduces a chunk stream into a Response, applying the fixed
// streaming token-accounting contract (spec.md §9): MessageStart's
// InputTokens is authoritative, and output tokens from MessageDone
// accumulate across the message.
func Assemble(chunks []Chunk) *Response {
	resp := &Response{}
	var textBuf string
	toolsByID := map[string]*ToolUseBlock{}
	var toolOrder []string

	for _, c := range chunks {
		switch v := c.(type) {
		case MessageStartChunk:
			resp.Usage.InputTokens = v.InputTokens
		case TextDeltaChunk:
			textBuf += v.Text
		case ToolUseStartChunk:
			toolsByID[v.ID] = &ToolUseBlock{ID: v.ID, Name: v.Name}
			toolOrder = append(toolOrder, v.ID)
		case ToolUseDeltaChunk:
			// Concrete clients are responsible for accumulating partial
			// JSON deltas into a parsed Input map before emitting
			// ToolUseEnd; this assembler only tracks ordering/identity.
			_ = v
		case ToolUseEndChunk:
			// no-op: tool content is finalized by the concrete client
		case MessageDoneChunk:
			resp.StopReason = v.StopReason
			resp.Usage.OutputTokens += v.Usage.OutputTokens
		case ErrorChunk:
			// surfaced via Outcome.Err by the concrete client, not here
		}
	}

	resp.Content = textBuf
	for _, id := range toolOrder {
		resp.ToolCalls = append(resp.ToolCalls, *toolsByID[id])
	}
	return resp
}
