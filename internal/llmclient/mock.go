package llmclient

import "context"

// MockLLM is a scripted test double: each call to Complete/Stream consumes
// the next queued Outcome, repeating the last one once the queue is
// exhausted. Used by internal/engine tests to drive scenarios S1/S2.
type MockLLM struct {
	Outcomes []Outcome
	calls    int
	Requests []Request
}

// NewMockLLM constructs a MockLLM that returns outcomes in order.
func NewMockLLM(outcomes ...Outcome) *MockLLM {
	return &MockLLM{Outcomes: outcomes}
}

func (m *MockLLM) next() Outcome {
	if len(m.Outcomes) == 0 {
		return Outcome{Response: &Response{StopReason: StopEndTurn}}
	}
	i := m.calls
	if i >= len(m.Outcomes) {
		i = len(m.Outcomes) - 1
	}
	m.calls++
	return m.Outcomes[i]
}

func (m *MockLLM) Complete(_ context.Context, req Request) Outcome {
	m.Requests = append(m.Requests, req)
	return m.next()
}

func (m *MockLLM) Stream(ctx context.Context, req Request, sink ChunkSink) Outcome {
	out := m.Complete(ctx, req)
	if out.Response != nil {
		sink(MessageStartChunk{InputTokens: out.Response.Usage.InputTokens})
		if out.Response.Content != "" {
			sink(TextDeltaChunk{Text: out.Response.Content})
		}
		sink(MessageDoneChunk{StopReason: out.Response.StopReason, Usage: out.Response.Usage})
	}
	return out
}

var _ Client = (*MockLLM)(nil)
