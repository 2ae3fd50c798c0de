package store

import (
	"sort"

	"github.com/taskdaemon/taskdaemon/internal/domain"
)

// CreateIterationLog stores a new IterationLog and broadcasts
// IterationLogCreated.
func (s *Store) CreateIterationLog(l *domain.IterationLog) (string, error) {
	rec := *l
	var serr *StateError
	err := s.submit(func() {
		s.iterIdx.put(&rec)
		if err := s.persistIterLogs(); err != nil {
			serr = StoreErrorf("%v", err)
			return
		}
		s.bumpCounter()
		s.events.publish(iterationLogCreated(rec.ExecutionID, int(rec.Iteration), rec.ExitCode))
	})
	if err != nil {
		return "", err
	}
	if serr != nil {
		return "", serr
	}
	return rec.ID, nil
}

// GetIterationLog fetches an IterationLog by id, returning (nil, nil) if
// absent.
func (s *Store) GetIterationLog(id string) (*domain.IterationLog, error) {
	var out *domain.IterationLog
	err := s.submit(func() {
		if l, ok := s.iterIdx.get(id); ok {
			cp := *l
			out = &cp
		}
	})
	return out, err
}

// ListIterationLogs returns every IterationLog for the given execution,
// in the order they were created.
func (s *Store) ListIterationLogs(execID string) ([]*domain.IterationLog, error) {
	var out []*domain.IterationLog
	err := s.submit(func() {
		for _, l := range s.iterIdx.listForExecution(execID) {
			cp := *l
			out = append(out, &cp)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].CreatedAt != out[j].CreatedAt {
				return out[i].CreatedAt < out[j].CreatedAt
			}
			return out[i].Iteration < out[j].Iteration
		})
	})
	return out, err
}

// DeleteIterationLogs removes every IterationLog for the given execution
// and returns how many were removed.
func (s *Store) DeleteIterationLogs(execID string) (int, error) {
	var n int
	err := s.submit(func() {
		n = s.iterIdx.deleteForExecution(execID)
		if err := s.persistIterLogs(); err != nil {
			n = 0
			return
		}
		s.bumpCounter()
	})
	return n, err
}
