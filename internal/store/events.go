package store

import "sync"

// StateEvent is broadcast to every subscriber on every StateActor mutation
// (spec.md §4.6). Kind identifies the event; ExecutionID is always set,
// and the remaining fields are set only for the kinds noted beside them.
type StateEvent struct {
	Kind string // "execution_created", "execution_updated", "execution_pending", "iteration_log_created"

	ExecutionID string
	LoopType    string // set for execution_created

	Iteration int    // set for iteration_log_created
	ExitCode  int    // set for iteration_log_created
}

func executionCreated(id, loopType string) StateEvent {
	return StateEvent{Kind: "execution_created", ExecutionID: id, LoopType: loopType}
}

func executionUpdated(id string) StateEvent {
	return StateEvent{Kind: "execution_updated", ExecutionID: id}
}

func executionPending(id string) StateEvent {
	return StateEvent{Kind: "execution_pending", ExecutionID: id}
}

func iterationLogCreated(execID string, iteration, exitCode int) StateEvent {
	return StateEvent{Kind: "iteration_log_created", ExecutionID: execID, Iteration: iteration, ExitCode: exitCode}
}

// broadcaster fans out StateEvents to any number of subscribers. Each
// subscriber gets its own buffered channel; a slow or absent reader never
// blocks the publishing actor goroutine — a full channel just drops the
// event for that subscriber (spec.md §5: "Coordinator publishes
// notifications ... makes no cross-publish ordering promise", the same
// best-effort stance this store applies to its own event fan-out).
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan StateEvent
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan StateEvent)}
}

// Subscribe registers a new listener with the given buffer depth and
// returns the channel plus an unsubscribe function.
func (b *broadcaster) Subscribe(buffer int) (<-chan StateEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan StateEvent, buffer)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

func (b *broadcaster) publish(ev StateEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
