// Package store implements the StateActor described in spec.md §4.6: the
// single owner of the JSONL-backed record store for Loop, LoopExecution,
// and IterationLog, driven by a command channel and publishing a
// StateEvent on every mutation.
//
// Grounded on td/src/state/manager.rs (the actor's CRUD, transition, and
// metrics surface) and td/src/state/messages.rs (the StateCommand/
// StateError/StateResponse taxonomy), translated from tokio's
// mpsc-with-oneshot-reply pattern to an idiomatic Go channel-of-closures
// actor. The JSONL file layout and in-memory indexing mechanics
// themselves have no grounding source in original_source/ (no file there
// implements the taskstore crate manager.rs calls out to) and are this
// package's own design, built to satisfy spec.md §6.1's "one directory
// per record kind" + "indexes rebuilt from JSONL on startup" contract.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Store is the StateActor: a single goroutine owning every in-memory
// index, fed by Store.jobs. All public methods are safe to call from any
// goroutine; none touch the indexes directly.
type Store struct {
	dir string

	loops      *collection
	execs      *collection
	iterLogs   *collection

	loopIdx *loopIndex
	execIdx *execIndex
	iterIdx *iterLogIndex

	events *broadcaster

	jobs chan job
	wg   sync.WaitGroup

	// closeMu guards against submitting on a closed jobs channel: Close
	// takes the write lock before closing jobs, submit takes the read
	// lock for the duration of its send so the two can never race.
	closeMu  sync.RWMutex
	isClosed bool

	fileLock *flock.Flock
	notifier Notifier

	counterPath string
	counterMu   sync.Mutex
}

// Notifier is an optional fire-and-forget hook invoked on transitions
// that should wake an external LoopManager process (td/src/state/
// manager.rs's notify_daemon_pending/notify_daemon_resumed). A nil
// Notifier is a silent no-op; failures are never propagated as errors.
type Notifier interface {
	NotifyPending(execID string)
	NotifyResumed(execID string)
}

type noopNotifier struct{}

func (noopNotifier) NotifyPending(string) {}
func (noopNotifier) NotifyResumed(string) {}

// Open initializes (or resumes) a JSONL store rooted at dir, acquiring
// an advisory lock on dir against a second daemon process, rebuilding
// in-memory indexes from the on-disk JSONL collections, and starting the
// actor goroutine. Callers must call Close when done.
func Open(dir string, notifier Notifier) (*Store, error) {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}

	fl := flock.New(filepath.Join(dir, ".lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock store dir %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("store dir %s is locked by another process", dir)
	}

	loops, err := newCollection(filepath.Join(dir, "loops"), "loops.jsonl")
	if err != nil {
		fl.Unlock()
		return nil, err
	}
	execs, err := newCollection(filepath.Join(dir, "executions"), "executions.jsonl")
	if err != nil {
		fl.Unlock()
		return nil, err
	}
	iterLogs, err := newCollection(filepath.Join(dir, "iteration_logs"), "iteration_logs.jsonl")
	if err != nil {
		fl.Unlock()
		return nil, err
	}

	s := &Store{
		dir:         dir,
		loops:       loops,
		execs:       execs,
		iterLogs:    iterLogs,
		loopIdx:     newLoopIndex(),
		execIdx:     newExecIndex(),
		iterIdx:     newIterLogIndex(),
		events:      newBroadcaster(),
		jobs:        make(chan job, 64),
		fileLock:    fl,
		notifier:    notifier,
		counterPath: filepath.Join(dir, ".state_version"),
	}

	if err := s.loadFromDisk(); err != nil {
		fl.Unlock()
		return nil, err
	}

	s.wg.Add(1)
	go s.run()
	return s, nil
}

func (s *Store) run() {
	defer s.wg.Done()
	for j := range s.jobs {
		j()
	}
}

// Close stops accepting new commands, waits for in-flight ones to drain,
// and releases the directory lock. Safe to call more than once.
func (s *Store) Close() error {
	s.closeMu.Lock()
	alreadyClosed := s.isClosed
	if !alreadyClosed {
		s.isClosed = true
		close(s.jobs)
	}
	s.closeMu.Unlock()

	s.wg.Wait()
	if alreadyClosed {
		return nil
	}
	return s.fileLock.Unlock()
}

// bumpCounter increments the on-disk counter file so external processes
// polling it (rather than sharing memory with the daemon) observe a
// state change (spec.md §4.6, §6.1).
func (s *Store) bumpCounter() {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()

	n := 0
	if raw, err := os.ReadFile(s.counterPath); err == nil {
		n, _ = strconv.Atoi(string(raw))
	}
	n++
	_ = os.WriteFile(s.counterPath, []byte(strconv.Itoa(n)), 0o644)
}

func nowMs() int64 { return time.Now().UnixMilli() }

// ReadStateVersion reads the counter file under dir without going through
// a live Store, for external processes that only want to poll for change
// (td/src/state/manager.rs's read_state_version). Returns 0 if the file
// is absent or unparsable, matching the original's silent-default
// behavior rather than surfacing a poll-time error.
func ReadStateVersion(dir string) uint64 {
	raw, err := os.ReadFile(filepath.Join(dir, ".state_version"))
	if err != nil {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
