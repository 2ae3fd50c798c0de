package store

import "github.com/taskdaemon/taskdaemon/internal/domain"

// CreateExecution stores a new LoopExecution and broadcasts
// ExecutionCreated on success.
func (s *Store) CreateExecution(e *domain.LoopExecution) (string, error) {
	rec := e.Clone()
	var serr *StateError
	err := s.submit(func() {
		if _, exists := s.execIdx.get(rec.ID); exists {
			serr = StoreErrorf("execution %s already exists", rec.ID)
			return
		}
		s.execIdx.put(rec)
		if err := s.persistExecs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.bumpCounter()
		s.events.publish(executionCreated(rec.ID, rec.LoopType))
	})
	if err != nil {
		return "", err
	}
	if serr != nil {
		return "", serr
	}
	return rec.ID, nil
}

// GetExecution fetches a LoopExecution by id, returning (nil, nil) if
// absent.
func (s *Store) GetExecution(id string) (*domain.LoopExecution, error) {
	var out *domain.LoopExecution
	err := s.submit(func() {
		if e, ok := s.execIdx.get(id); ok {
			out = e.Clone()
		}
	})
	return out, err
}

// GetExecutionRequired fetches a LoopExecution by id, returning a
// NotFound StateError if absent.
func (s *Store) GetExecutionRequired(id string) (*domain.LoopExecution, error) {
	e, err := s.GetExecution(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, NotFound(id)
	}
	return e, nil
}

// UpdateExecution replaces the stored LoopExecution (matched by ID) and
// broadcasts ExecutionUpdated.
func (s *Store) UpdateExecution(e *domain.LoopExecution) error {
	rec := e.Clone()
	var serr *StateError
	err := s.submit(func() {
		if _, ok := s.execIdx.get(rec.ID); !ok {
			serr = NotFound(rec.ID)
			return
		}
		s.execIdx.put(rec)
		if err := s.persistExecs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.bumpCounter()
		s.events.publish(executionUpdated(rec.ID))
	})
	if err != nil {
		return err
	}
	return serr.orNil()
}

// ListExecutions returns every LoopExecution matching the given optional
// filters (empty string = no filter on that field).
func (s *Store) ListExecutions(statusFilter, loopTypeFilter string) ([]*domain.LoopExecution, error) {
	var out []*domain.LoopExecution
	err := s.submit(func() {
		for _, e := range s.execIdx.list(statusFilter, loopTypeFilter) {
			out = append(out, e.Clone())
		}
	})
	return out, err
}

// ListExecutionsForParent returns every LoopExecution whose Parent is
// the given Loop id.
func (s *Store) ListExecutionsForParent(parentLoopID string) ([]*domain.LoopExecution, error) {
	var out []*domain.LoopExecution
	err := s.submit(func() {
		for _, e := range s.execIdx.listForParent(parentLoopID) {
			out = append(out, e.Clone())
		}
	})
	return out, err
}

// DeleteExecution removes a LoopExecution and cascade-deletes every
// IterationLog whose ExecutionID matches (spec.md §4.6).
func (s *Store) DeleteExecution(id string) error {
	var serr *StateError
	err := s.submit(func() {
		if _, ok := s.execIdx.get(id); !ok {
			serr = NotFound(id)
			return
		}
		s.execIdx.delete(id)
		if err := s.persistExecs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.iterIdx.deleteForExecution(id)
		if err := s.persistIterLogs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.bumpCounter()
	})
	if err != nil {
		return err
	}
	return serr.orNil()
}
