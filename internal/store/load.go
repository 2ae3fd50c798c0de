package store

import (
	"encoding/json"
	"fmt"

	"github.com/taskdaemon/taskdaemon/internal/domain"
)

// loadFromDisk rebuilds every in-memory index from the on-disk JSONL
// collections. Called once at Open; Sync re-invokes it.
func (s *Store) loadFromDisk() error {
	loopLines, err := s.loops.loadAll()
	if err != nil {
		return err
	}
	loopIdx := newLoopIndex()
	for _, raw := range loopLines {
		var l domain.Loop
		if err := json.Unmarshal(raw, &l); err != nil {
			return DeserializationErrorf("loop record: %v", err)
		}
		rec := l
		loopIdx.put(&rec)
	}

	execLines, err := s.execs.loadAll()
	if err != nil {
		return err
	}
	execIdx := newExecIndex()
	for _, raw := range execLines {
		var e domain.LoopExecution
		if err := json.Unmarshal(raw, &e); err != nil {
			return DeserializationErrorf("execution record: %v", err)
		}
		rec := e
		execIdx.put(&rec)
	}

	iterLines, err := s.iterLogs.loadAll()
	if err != nil {
		return err
	}
	iterIdx := newIterLogIndex()
	for _, raw := range iterLines {
		var l domain.IterationLog
		if err := json.Unmarshal(raw, &l); err != nil {
			return DeserializationErrorf("iteration log record: %v", err)
		}
		rec := l
		iterIdx.put(&rec)
	}
	iterIdx.rebuildSecondary()

	s.loopIdx = loopIdx
	s.execIdx = execIdx
	s.iterIdx = iterIdx
	return nil
}

// persistLoops rewrites the full loops.jsonl file from the current index.
func (s *Store) persistLoops() error {
	records := make([]json.RawMessage, 0, len(s.loopIdx.byID))
	for _, l := range s.loopIdx.byID {
		raw, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("marshal loop %s: %w", l.ID, err)
		}
		records = append(records, raw)
	}
	return s.loops.rewrite(records)
}

func (s *Store) persistExecs() error {
	records := make([]json.RawMessage, 0, len(s.execIdx.byID))
	for _, e := range s.execIdx.byID {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal execution %s: %w", e.ID, err)
		}
		records = append(records, raw)
	}
	return s.execs.rewrite(records)
}

func (s *Store) persistIterLogs() error {
	records := make([]json.RawMessage, 0, len(s.iterIdx.byID))
	for _, l := range s.iterIdx.byID {
		raw, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("marshal iteration log %s: %w", l.ID, err)
		}
		records = append(records, raw)
	}
	return s.iterLogs.rewrite(records)
}
