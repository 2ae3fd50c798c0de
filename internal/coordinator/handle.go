package coordinator

import (
	"time"

	"github.com/taskdaemon/taskdaemon/internal/tools"
)

// Handle is a Coordinator bound to one execution id, the per-loop view of
// §4.5's operations that a LoopEngine's ToolContext holds onto for the
// life of its run.
type Handle struct {
	c       *Coordinator
	from    string
	timeout time.Duration
}

var _ tools.CoordinatorHandle = (*Handle)(nil)

// Query sends question to target and blocks for up to h's default query
// timeout waiting for a reply_query call to answer it. Satisfies
// tools.CoordinatorHandle.
func (h *Handle) Query(target, question string) (string, error) {
	return h.c.Query(h.from, target, question, h.timeout)
}

// QueryWithTimeout is Query with an explicit timeout, for callers that
// need to override the default (e.g. the query tool's timeout_ms
// parameter).
func (h *Handle) QueryWithTimeout(target, question string, timeout time.Duration) (string, error) {
	return h.c.Query(h.from, target, question, timeout)
}

// Share sends shareType/data to target for use in its next iteration.
// Satisfies tools.CoordinatorHandle.
func (h *Handle) Share(target, shareType, data string) error {
	return h.c.Share(h.from, target, shareType, data)
}

// ReplyQuery fulfills a pending query addressed to h's execution.
func (h *Handle) ReplyQuery(queryID, answer string) error {
	return h.c.ReplyQuery(queryID, answer)
}

// Subscribe adds h's execution to topic's subscriber set.
func (h *Handle) Subscribe(topic string) {
	h.c.Subscribe(topic, h.from)
}

// Unsubscribe removes h's execution from topic's subscriber set.
func (h *Handle) Unsubscribe(topic string) {
	h.c.Unsubscribe(topic, h.from)
}

// Publish broadcasts a notification to topic's other subscribers.
func (h *Handle) Publish(topic, eventType, data string) {
	h.c.Publish(topic, h.from, eventType, data)
}

// Stop requests target's engine stop, attributing the request to h's
// execution.
func (h *Handle) Stop(target, reason string) error {
	return h.c.Stop(target, h.from, reason)
}

// TryRecv non-blockingly dequeues the next message addressed to h's
// execution.
func (h *Handle) TryRecv() (Message, bool) {
	return h.c.TryRecv(h.from)
}
