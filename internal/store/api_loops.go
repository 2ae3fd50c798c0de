package store

import "github.com/taskdaemon/taskdaemon/internal/domain"

// CreateLoop stores a new Loop record and returns its id.
func (s *Store) CreateLoop(l *domain.Loop) (string, error) {
	rec := l.Clone()
	var serr *StateError
	err := s.submit(func() {
		if _, exists := s.loopIdx.get(rec.ID); exists {
			serr = StoreErrorf("loop %s already exists", rec.ID)
			return
		}
		s.loopIdx.put(rec)
		if e := s.persistLoops(); e != nil {
			serr = StoreErrorf("%v", e)
			return
		}
		s.bumpCounter()
	})
	if err != nil {
		return "", err
	}
	if serr != nil {
		return "", serr
	}
	return rec.ID, nil
}

// GetLoop fetches a Loop by id, returning (nil, nil) if absent.
func (s *Store) GetLoop(id string) (*domain.Loop, error) {
	var out *domain.Loop
	err := s.submit(func() {
		if l, ok := s.loopIdx.get(id); ok {
			out = l.Clone()
		}
	})
	return out, err
}

// GetLoopRequired fetches a Loop by id, returning a NotFound StateError
// if absent rather than a nil result.
func (s *Store) GetLoopRequired(id string) (*domain.Loop, error) {
	l, err := s.GetLoop(id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, NotFound(id)
	}
	return l, nil
}

// UpdateLoop replaces the stored Loop with the given record (matched by
// ID) and persists the change.
func (s *Store) UpdateLoop(l *domain.Loop) error {
	rec := l.Clone()
	var serr *StateError
	err := s.submit(func() {
		if _, ok := s.loopIdx.get(rec.ID); !ok {
			serr = NotFound(rec.ID)
			return
		}
		s.loopIdx.put(rec)
		if e := s.persistLoops(); e != nil {
			serr = StoreErrorf("%v", e)
			return
		}
		s.bumpCounter()
	})
	if err != nil {
		return err
	}
	return serr.orNil()
}

// ListLoops returns every Loop matching the given optional filters
// (empty string = no filter on that field).
func (s *Store) ListLoops(typeFilter, statusFilter, parentFilter string) ([]*domain.Loop, error) {
	var out []*domain.Loop
	err := s.submit(func() {
		for _, l := range s.loopIdx.list(typeFilter, statusFilter, parentFilter) {
			out = append(out, l.Clone())
		}
	})
	return out, err
}

// ListLoopsForParent returns every child Loop of parentID.
func (s *Store) ListLoopsForParent(parentID string) ([]*domain.Loop, error) {
	return s.ListLoops("", "", parentID)
}

// ListLoopsByType returns every Loop of the given type, ignoring status.
func (s *Store) ListLoopsByType(loopType string) ([]*domain.Loop, error) {
	return s.ListLoops(loopType, "", "")
}

// DeleteLoop removes a Loop record. It does not cascade to LoopExecutions
// (only LoopExecution -> IterationLog cascades, spec.md §4.6).
func (s *Store) DeleteLoop(id string) error {
	var serr *StateError
	err := s.submit(func() {
		if _, ok := s.loopIdx.get(id); !ok {
			serr = NotFound(id)
			return
		}
		s.loopIdx.delete(id)
		if e := s.persistLoops(); e != nil {
			serr = StoreErrorf("%v", e)
			return
		}
		s.bumpCounter()
	})
	if err != nil {
		return err
	}
	return serr.orNil()
}

func (e *StateError) orNil() error {
	if e == nil {
		return nil
	}
	return e
}
