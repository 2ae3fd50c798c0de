// Package coordinator implements the inter-loop messaging actor described
// in spec.md §4.5/§5/§6.6: a mailbox per registered execution, topic
// subscriber sets for publish/subscribe, and a pending-query table of
// oneshot reply slots.
//
// No file in original_source/ implements this actor — query.rs and
// share.rs show only the caller-side contract (coordinator.query(target,
// question, timeout), coordinator.share(target, share_type, data) and
// their exact error strings), not the coordinator's own internals. The
// registry-plus-snapshot-then-broadcast shape here is grounded instead on
// the teacher pack's pkg/events/manager.go ConnectionManager (a registry
// of per-client channels keyed by ID, with Broadcast snapshotting
// subscriber pointers under a lock before sending outside it) and
// pkg/agent/orchestrator/runner.go's reserve-then-register bounded
// concurrency, adapted here to bounded per-execution mailboxes whose
// overflow is reported as a delivery error rather than blocking the
// sender (spec.md §5).
package coordinator

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taskdaemon/taskdaemon/internal/ids"
)

// defaultMailboxDepth bounds how many undelivered messages an execution's
// mailbox holds before further sends fail with a delivery error, matching
// spec.md §5's "bounded mailbox depth; overflow is reported as a delivery
// error to the sender."
const defaultMailboxDepth = 32

// defaultQueryTimeout matches query.rs's advertised default (timeout_ms:
// 30000) for queries that don't specify their own timeout.
const defaultQueryTimeout = 30 * time.Second

// Coordinator owns every registered execution's mailbox, the topic
// subscriber sets driving publish/subscribe, and the pending-query table
// used to fulfill query/reply_query pairs.
type Coordinator struct {
	mu        sync.Mutex
	mailboxes map[string]chan Message
	topics    map[string]map[string]bool // topic -> set of subscriber exec ids
	pending   map[string]chan string     // query id -> reply slot

	mailboxDepth int
	log          *eventLog // nil disables durable logging
}

// New creates a Coordinator with no durable event log.
func New() *Coordinator {
	return &Coordinator{
		mailboxes:    make(map[string]chan Message),
		topics:       make(map[string]map[string]bool),
		pending:      make(map[string]chan string),
		mailboxDepth: defaultMailboxDepth,
	}
}

// NewWithLog creates a Coordinator that additionally appends every
// in-flight message to a newline-delimited JSON event log at path, for
// crash recovery and auditing (spec.md §6.6). Replay on startup is not
// required for correctness and is not implemented.
func NewWithLog(path string) (*Coordinator, error) {
	c := New()
	l, err := newEventLog(path)
	if err != nil {
		return nil, err
	}
	c.log = l
	return c, nil
}

// Close releases the durable event log, if one is open.
func (c *Coordinator) Close() error {
	return c.log.Close()
}

// Register creates target's mailbox. Returns an error if target is
// already registered; callers should Unregister on engine exit.
func (c *Coordinator) Register(execID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.mailboxes[execID]; exists {
		return fmt.Errorf("coordinator: execution %q is already registered", execID)
	}
	c.mailboxes[execID] = make(chan Message, c.mailboxDepth)
	return nil
}

// Unregister removes target's mailbox and drops it from every topic it
// subscribed to. Safe to call on an execution that was never registered.
func (c *Coordinator) Unregister(execID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.mailboxes, execID)
	for _, subs := range c.topics {
		delete(subs, execID)
	}
}

// Handle returns a bound handle for execID, satisfying tools.CoordinatorHandle
// and offering the rest of the §4.5 surface (subscribe, publish, try_recv,
// stop) for the engine that owns execID.
func (c *Coordinator) Handle(execID string) *Handle {
	return &Handle{c: c, from: execID, timeout: defaultQueryTimeout}
}

// Subscribe adds execID to topic's subscriber set (spec.md §4.5's
// subscribe(topic)). Subscribing does not require the execution to be
// registered yet; publish simply skips dead subscribers.
func (c *Coordinator) Subscribe(topic, execID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs, ok := c.topics[topic]
	if !ok {
		subs = make(map[string]bool)
		c.topics[topic] = subs
	}
	subs[execID] = true
}

// Unsubscribe removes execID from topic's subscriber set.
func (c *Coordinator) Unsubscribe(topic, execID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics[topic], execID)
}

// deliver enqueues msg into target's mailbox without blocking. A full
// mailbox or an unregistered target both fail the send rather than stall
// the caller, per spec.md §5.
func (c *Coordinator) deliver(target string, msg Message) error {
	c.mu.Lock()
	mb, ok := c.mailboxes[target]
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("coordinator: no execution registered with id %q", target)
	}
	select {
	case mb <- msg:
		c.log.append(target, msg)
		return nil
	default:
		return fmt.Errorf("coordinator: mailbox for %q is full, message dropped", target)
	}
}

// Stop enqueues a Stop{from, reason} message into target's mailbox
// (spec.md §4.9 uses this to request graceful shutdown of a running
// loop's engine).
func (c *Coordinator) Stop(target, from, reason string) error {
	return c.deliver(target, stopMessage(from, reason))
}

// Query allocates a query id, enqueues Query{query_id, from, question}
// into target's mailbox, and blocks until reply_query fulfills the
// matching reply slot or timeout elapses (spec.md §4.5's
// query(target, question, timeout) -> string).
func (c *Coordinator) Query(from, target, question string, timeout time.Duration) (string, error) {
	queryID := ids.New("query", question)
	reply := make(chan string, 1)

	c.mu.Lock()
	c.pending[queryID] = reply
	c.mu.Unlock()

	if err := c.deliver(target, queryMessage(queryID, from, question)); err != nil {
		c.mu.Lock()
		delete(c.pending, queryID)
		c.mu.Unlock()
		return "", err
	}

	select {
	case answer := <-reply:
		return answer, nil
	case <-time.After(timeout):
		c.mu.Lock()
		delete(c.pending, queryID)
		c.mu.Unlock()
		return "", fmt.Errorf("coordinator: query to %q timed out after %s", target, timeout)
	}
}

// ReplyQuery fulfills the reply slot for queryID, waking the Query call
// that allocated it. Returns an error if queryID is unknown (already
// answered, or its query already timed out).
func (c *Coordinator) ReplyQuery(queryID, answer string) error {
	c.mu.Lock()
	reply, ok := c.pending[queryID]
	if ok {
		delete(c.pending, queryID)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("coordinator: no pending query %q (already answered or timed out)", queryID)
	}
	reply <- answer
	return nil
}

// Share enqueues Share{from, share_type, data} into target's mailbox for
// use in target's next iteration (spec.md §4.5's share(target, share_type,
// data)).
func (c *Coordinator) Share(from, target, shareType, data string) error {
	return c.deliver(target, shareMessage(from, shareType, data))
}

// Publish enqueues Notification{from, event_type, data} into every
// subscriber of topic except from itself (spec.md §4.5's publish(topic,
// from, event_type, data)). Delivery is best-effort per subscriber: a
// full or dead mailbox is skipped rather than failing the publish as a
// whole, since there is no single waiting sender to report the error to.
// Subscriber order within one Publish call is deterministic (sorted by
// execution id); spec.md §5 makes no guarantee across separate Publish
// calls.
func (c *Coordinator) Publish(topic, from, eventType, data string) {
	c.mu.Lock()
	subs := c.topics[topic]
	targets := make([]string, 0, len(subs))
	for id := range subs {
		if id != from {
			targets = append(targets, id)
		}
	}
	c.mu.Unlock()

	sort.Strings(targets)
	msg := notificationMessage(from, eventType, data)
	for _, target := range targets {
		_ = c.deliver(target, msg)
	}
}

// TryRecv non-blockingly dequeues the next message from execID's own
// mailbox (spec.md §4.5's try_recv()). Returns false if the mailbox is
// empty or execID was never registered.
func (c *Coordinator) TryRecv(execID string) (Message, bool) {
	c.mu.Lock()
	mb, ok := c.mailboxes[execID]
	c.mu.Unlock()
	if !ok {
		return Message{}, false
	}

	select {
	case msg := <-mb:
		return msg, true
	default:
		return Message{}, false
	}
}
