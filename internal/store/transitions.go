package store

import "github.com/taskdaemon/taskdaemon/internal/domain"

// Controlled transitions (spec.md §4.6, §4.7). Each enforces its status
// precondition inside the actor goroutine so a racing caller never
// observes a half-applied transition, then persists and broadcasts.

// StartDraft moves a Draft execution to Pending, for callers that review
// a queue before releasing work.
func (s *Store) StartDraft(id string) error {
	return s.transition(id, domain.ExecDraft, domain.ExecPending, "start draft", true)
}

// ActivateDraft moves a Draft execution to Pending directly, for callers
// that skip any queue-review step. Identical externally observable
// effect to StartDraft (see DESIGN.md open-question decision).
func (s *Store) ActivateDraft(id string) error {
	return s.transition(id, domain.ExecDraft, domain.ExecPending, "activate draft", true)
}

// PauseExecution moves a Running execution to Paused.
func (s *Store) PauseExecution(id string) error {
	return s.transition(id, domain.ExecRunning, domain.ExecPaused, "pause execution", false)
}

// ResumeExecution moves a Paused or Blocked execution to Running and
// emits ExecutionPending to prompt pickup, notifying the daemon.
func (s *Store) ResumeExecution(id string) error {
	var serr *StateError
	err := s.submit(func() {
		e, ok := s.execIdx.get(id)
		if !ok {
			serr = NotFound(id)
			return
		}
		if e.Status != domain.ExecPaused && e.Status != domain.ExecBlocked {
			serr = invalidTransitionError(id, "resume execution", string(e.Status), "Paused or Blocked")
			return
		}
		e.Status = domain.ExecRunning
		e.UpdatedAt = nowMs()
		if err := s.persistExecs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.bumpCounter()
		s.events.publish(executionPending(id))
		s.events.publish(executionUpdated(id))
		s.notifier.NotifyResumed(id)
	})
	if err != nil {
		return err
	}
	return serr.orNil()
}

// CancelExecution moves any non-terminal execution to Stopped.
func (s *Store) CancelExecution(id string) error {
	var serr *StateError
	err := s.submit(func() {
		e, ok := s.execIdx.get(id)
		if !ok {
			serr = NotFound(id)
			return
		}
		if e.Status.Terminal() {
			serr = invalidTransitionError(id, "cancel execution", string(e.Status), "a non-terminal status")
			return
		}
		e.Status = domain.ExecStopped
		e.UpdatedAt = nowMs()
		if err := s.persistExecs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.bumpCounter()
		s.events.publish(executionUpdated(id))
	})
	if err != nil {
		return err
	}
	return serr.orNil()
}

// transition implements the single-source-status transitions
// (StartDraft, ActivateDraft, PauseExecution): require the execution be
// in `from`, set it to `to`, persist, and optionally emit
// ExecutionPending + notify (the two draft transitions do; pause does not).
func (s *Store) transition(id string, from, to domain.ExecStatus, op string, emitPending bool) error {
	var serr *StateError
	err := s.submit(func() {
		e, ok := s.execIdx.get(id)
		if !ok {
			serr = NotFound(id)
			return
		}
		if e.Status != from {
			serr = invalidTransitionError(id, op, string(e.Status), string(from))
			return
		}
		e.Status = to
		e.UpdatedAt = nowMs()
		if err := s.persistExecs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.bumpCounter()
		if emitPending {
			s.events.publish(executionPending(id))
			s.notifier.NotifyPending(id)
		}
		s.events.publish(executionUpdated(id))
	})
	if err != nil {
		return err
	}
	return serr.orNil()
}
