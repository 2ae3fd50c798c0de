package coordinator

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// eventLog appends every delivered message to a newline-delimited JSON
// file, one event per line, for crash recovery and auditing (spec.md
// §6.6). A nil *eventLog is a valid no-op receiver so Coordinator can
// call log.append/log.Close unconditionally whether or not durable
// logging is enabled.
type eventLog struct {
	mu sync.Mutex
	f  *os.File
}

// loggedEvent is the on-disk shape of one coordinator message. Every
// event carries FromExecID where applicable, per spec.md §6.6.
type loggedEvent struct {
	ToExecID   string `json:"to_exec_id"`
	FromExecID string `json:"from_exec_id"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason,omitempty"`
	QueryID    string `json:"query_id,omitempty"`
	Question   string `json:"question,omitempty"`
	ShareType  string `json:"share_type,omitempty"`
	EventType  string `json:"event_type,omitempty"`
	Data       string `json:"data,omitempty"`
}

func newEventLog(path string) (*eventLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open coordinator event log %s: %w", path, err)
	}
	return &eventLog{f: f}, nil
}

func (l *eventLog) append(target string, msg Message) {
	if l == nil {
		return
	}

	rec := loggedEvent{
		ToExecID:   target,
		FromExecID: msg.From,
		Kind:       msg.Kind,
		Reason:     msg.Reason,
		QueryID:    msg.QueryID,
		Question:   msg.Question,
		ShareType:  msg.ShareType,
		EventType:  msg.EventType,
		Data:       msg.Data,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.f.Write(line)
}

func (l *eventLog) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}
