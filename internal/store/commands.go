package store

// job is one unit of work submitted to the StateActor's single
// processing goroutine (td/src/state/messages.rs's StateCommand, minus
// the per-variant struct fields: each public API method here builds its
// own typed local variables via a closure instead of a generic oneshot
// reply field, which keeps the command surface to one type instead of
// one struct field pair per variant).
type job func()

// submit enqueues fn on the actor's command channel and blocks until it
// has run, or returns ErrChannel if the actor has already shut down.
// Holding closeMu for read for the duration of the send (not just the
// isClosed check) guarantees Close never closes s.jobs concurrently with
// a send, which would otherwise panic.
func (s *Store) submit(fn func()) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if s.isClosed {
		return ErrChannel
	}

	done := make(chan struct{})
	s.jobs <- job(func() { fn(); close(done) })
	<-done
	return nil
}
