package store

import "github.com/taskdaemon/taskdaemon/internal/domain"

// loopIndex holds every Loop keyed by id (spec.md §4.6, §6.1). It has no
// secondary indexes: list filters by type, status and parent with a
// linear scan of the by-id map. execIndex below works the same way; only
// iterLogIndex keeps a secondary (execution_id) index.
type loopIndex struct {
	byID map[string]*domain.Loop
}

func newLoopIndex() *loopIndex {
	return &loopIndex{byID: make(map[string]*domain.Loop)}
}

func (idx *loopIndex) put(l *domain.Loop) { idx.byID[l.ID] = l }
func (idx *loopIndex) delete(id string)   { delete(idx.byID, id) }
func (idx *loopIndex) get(id string) (*domain.Loop, bool) {
	l, ok := idx.byID[id]
	return l, ok
}

// list returns Loops matching the given optional filters (empty string
// means "no filter on this field"), in no particular order.
func (idx *loopIndex) list(typeFilter, statusFilter, parentFilter string) []*domain.Loop {
	out := make([]*domain.Loop, 0, len(idx.byID))
	for _, l := range idx.byID {
		if typeFilter != "" && l.Type != typeFilter {
			continue
		}
		if statusFilter != "" && string(l.Status) != statusFilter {
			continue
		}
		if parentFilter != "" && l.Parent != parentFilter {
			continue
		}
		out = append(out, l)
	}
	return out
}

// execIndex holds every LoopExecution keyed by id.
type execIndex struct {
	byID map[string]*domain.LoopExecution
}

func newExecIndex() *execIndex {
	return &execIndex{byID: make(map[string]*domain.LoopExecution)}
}

func (idx *execIndex) put(e *domain.LoopExecution) { idx.byID[e.ID] = e }
func (idx *execIndex) delete(id string)             { delete(idx.byID, id) }
func (idx *execIndex) get(id string) (*domain.LoopExecution, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

func (idx *execIndex) list(statusFilter, loopTypeFilter string) []*domain.LoopExecution {
	out := make([]*domain.LoopExecution, 0, len(idx.byID))
	for _, e := range idx.byID {
		if statusFilter != "" && string(e.Status) != statusFilter {
			continue
		}
		if loopTypeFilter != "" && e.LoopType != loopTypeFilter {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (idx *execIndex) listForParent(parentLoopID string) []*domain.LoopExecution {
	out := make([]*domain.LoopExecution, 0)
	for _, e := range idx.byID {
		if e.Parent == parentLoopID {
			out = append(out, e)
		}
	}
	return out
}

// iterLogIndex holds every IterationLog keyed by id, secondary-indexed by
// execution_id for cascade deletes and per-execution listing.
type iterLogIndex struct {
	byID        map[string]*domain.IterationLog
	byExecution map[string][]string // execution_id -> iteration log ids
}

func newIterLogIndex() *iterLogIndex {
	return &iterLogIndex{
		byID:        make(map[string]*domain.IterationLog),
		byExecution: make(map[string][]string),
	}
}

func (idx *iterLogIndex) put(l *domain.IterationLog) {
	idx.byID[l.ID] = l
	for _, id := range idx.byExecution[l.ExecutionID] {
		if id == l.ID {
			return
		}
	}
	idx.byExecution[l.ExecutionID] = append(idx.byExecution[l.ExecutionID], l.ID)
}

func (idx *iterLogIndex) get(id string) (*domain.IterationLog, bool) {
	l, ok := idx.byID[id]
	return l, ok
}

func (idx *iterLogIndex) listForExecution(execID string) []*domain.IterationLog {
	ids := idx.byExecution[execID]
	out := make([]*domain.IterationLog, 0, len(ids))
	for _, id := range ids {
		if l, ok := idx.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// deleteForExecution removes every IterationLog belonging to execID and
// reports how many were removed (delete cascade, spec.md §4.6).
func (idx *iterLogIndex) deleteForExecution(execID string) int {
	ids := idx.byExecution[execID]
	for _, id := range ids {
		delete(idx.byID, id)
	}
	n := len(ids)
	delete(idx.byExecution, execID)
	return n
}

func (idx *iterLogIndex) rebuildSecondary() {
	idx.byExecution = make(map[string][]string)
	for id, l := range idx.byID {
		idx.byExecution[l.ExecutionID] = append(idx.byExecution[l.ExecutionID], id)
	}
}
