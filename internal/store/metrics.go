package store

import "github.com/taskdaemon/taskdaemon/internal/domain"

// DaemonMetrics is the aggregate snapshot returned by GetMetrics
// (td/src/state/manager.rs's get_metrics).
type DaemonMetrics struct {
	TotalExecutions int `json:"total_executions"`
	Drafts          int `json:"drafts"`
	Running         int `json:"running"`
	Pending         int `json:"pending"`
	Completed       int `json:"completed"`
	Failed          int `json:"failed"`
	Paused          int `json:"paused"`
	Stopped         int `json:"stopped"`
	TotalIterations int `json:"total_iterations"`
}

// GetMetrics returns a point-in-time aggregate over every LoopExecution
// and IterationLog.
func (s *Store) GetMetrics() (DaemonMetrics, error) {
	var m DaemonMetrics
	err := s.submit(func() {
		m.TotalExecutions = len(s.execIdx.byID)
		for _, e := range s.execIdx.byID {
			switch e.Status {
			case domain.ExecDraft:
				m.Drafts++
			case domain.ExecRunning:
				m.Running++
			case domain.ExecPending:
				m.Pending++
			case domain.ExecComplete:
				m.Completed++
			case domain.ExecFailed:
				m.Failed++
			case domain.ExecPaused:
				m.Paused++
			case domain.ExecStopped:
				m.Stopped++
			}
		}
		m.TotalIterations = len(s.iterIdx.byID)
	})
	return m, err
}

// Sync re-reads every JSONL collection from disk, discarding and
// rebuilding all in-memory indexes.
func (s *Store) Sync() error {
	var loadErr error
	err := s.submit(func() {
		loadErr = s.loadFromDisk()
	})
	if err != nil {
		return err
	}
	return loadErr
}

// RebuildIndexes rebuilds secondary indexes from the primary maps
// without re-reading from disk, returning the number of records indexed.
func (s *Store) RebuildIndexes() (int, error) {
	var n int
	err := s.submit(func() {
		s.iterIdx.rebuildSecondary()
		n = len(s.loopIdx.byID) + len(s.execIdx.byID) + len(s.iterIdx.byID)
	})
	return n, err
}

// Subscribe registers a listener for every StateEvent broadcast on
// mutation, returning the channel and an unsubscribe function.
func (s *Store) Subscribe(buffer int) (<-chan StateEvent, func()) {
	return s.events.Subscribe(buffer)
}
