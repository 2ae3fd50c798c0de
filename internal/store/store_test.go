package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdaemon/taskdaemon/internal/domain"
)

type fakeNotifier struct {
	mu      sync.Mutex
	pending []string
	resumed []string
}

func (f *fakeNotifier) NotifyPending(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, id)
}

func (f *fakeNotifier) NotifyResumed(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumed = append(f.resumed, id)
}

func newTestStore(t *testing.T) (*Store, *fakeNotifier) {
	t.Helper()
	fn := &fakeNotifier{}
	s, err := Open(t.TempDir(), fn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, fn
}

func TestCreateGetUpdateLoop(t *testing.T) {
	s, _ := newTestStore(t)

	l := &domain.Loop{ID: "abc123-loop-demo", Type: "plan", Title: "Demo", Status: domain.LoopPending}
	id, err := s.CreateLoop(l)
	require.NoError(t, err)
	assert.Equal(t, "abc123-loop-demo", id)

	got, err := s.GetLoop(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Demo", got.Title)

	got.Status = domain.LoopReady
	require.NoError(t, s.UpdateLoop(got))

	reread, err := s.GetLoop(id)
	require.NoError(t, err)
	assert.Equal(t, domain.LoopReady, reread.Status)
}

func TestCreateLoopDuplicateIDFails(t *testing.T) {
	s, _ := newTestStore(t)
	l := &domain.Loop{ID: "dup000-loop-x", Type: "plan", Status: domain.LoopPending}
	_, err := s.CreateLoop(l)
	require.NoError(t, err)
	_, err = s.CreateLoop(l)
	require.Error(t, err)
}

func TestGetLoopRequiredNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.GetLoopRequired("missing-loop-x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Record not found")
}

func TestListLoopsFilters(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, noErr(s.CreateLoop(&domain.Loop{ID: "111111-loop-a", Type: "plan", Status: domain.LoopPending})))
	require.NoError(t, noErr(s.CreateLoop(&domain.Loop{ID: "222222-loop-b", Type: "spec", Status: domain.LoopReady, Parent: "111111-loop-a"})))
	require.NoError(t, noErr(s.CreateLoop(&domain.Loop{ID: "333333-loop-c", Type: "spec", Status: domain.LoopPending})))

	specs, err := s.ListLoops("spec", "", "")
	require.NoError(t, err)
	assert.Len(t, specs, 2)

	children, err := s.ListLoopsForParent("111111-loop-a")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "222222-loop-b", children[0].ID)

	byType, err := s.ListLoopsByType("plan")
	require.NoError(t, err)
	assert.Len(t, byType, 1)
}

func TestDeleteLoop(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, noErr(s.CreateLoop(&domain.Loop{ID: "444444-loop-d", Type: "plan", Status: domain.LoopPending})))
	require.NoError(t, s.DeleteLoop("444444-loop-d"))
	got, err := s.GetLoop("444444-loop-d")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Error(t, s.DeleteLoop("444444-loop-d"))
}

func TestCreateExecutionBroadcastsEvent(t *testing.T) {
	s, _ := newTestStore(t)
	ch, unsub := s.Subscribe(4)
	defer unsub()

	e := &domain.LoopExecution{ID: "abc123-exec-demo", LoopType: "ralph", Status: domain.ExecDraft}
	id, err := s.CreateExecution(e)
	require.NoError(t, err)
	assert.Equal(t, "abc123-exec-demo", id)

	select {
	case ev := <-ch:
		assert.Equal(t, "execution_created", ev.Kind)
		assert.Equal(t, "abc123-exec-demo", ev.ExecutionID)
		assert.Equal(t, "ralph", ev.LoopType)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ExecutionCreated event")
	}
}

func TestUpdateExecutionNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.UpdateExecution(&domain.LoopExecution{ID: "ghost000-exec-x", Status: domain.ExecRunning})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Record not found")
}

func TestDeleteExecutionCascadesIterationLogs(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, noErr(s.CreateExecution(&domain.LoopExecution{ID: "e00001-exec-cascade", Status: domain.ExecRunning})))

	_, err := s.CreateIterationLog(&domain.IterationLog{ID: "e00001-exec-cascade-iter-1", ExecutionID: "e00001-exec-cascade", Iteration: 1})
	require.NoError(t, err)
	_, err = s.CreateIterationLog(&domain.IterationLog{ID: "e00001-exec-cascade-iter-2", ExecutionID: "e00001-exec-cascade", Iteration: 2})
	require.NoError(t, err)

	logs, err := s.ListIterationLogs("e00001-exec-cascade")
	require.NoError(t, err)
	require.Len(t, logs, 2)

	require.NoError(t, s.DeleteExecution("e00001-exec-cascade"))

	logs, err = s.ListIterationLogs("e00001-exec-cascade")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestReopenReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	fn := &fakeNotifier{}
	s, err := Open(dir, fn)
	require.NoError(t, err)

	_, err = s.CreateLoop(&domain.Loop{ID: "aaaaaa-loop-persisted", Type: "plan", Status: domain.LoopPending})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(dir, fn)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetLoop("aaaaaa-loop-persisted")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "plan", got.Type)
}

func TestGetMetrics(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, noErr(s.CreateExecution(&domain.LoopExecution{ID: "m00001-exec-a", Status: domain.ExecRunning})))
	require.NoError(t, noErr(s.CreateExecution(&domain.LoopExecution{ID: "m00002-exec-b", Status: domain.ExecComplete})))
	require.NoError(t, noErr(s.CreateExecution(&domain.LoopExecution{ID: "m00003-exec-c", Status: domain.ExecPending})))

	m, err := s.GetMetrics()
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalExecutions)
	assert.Equal(t, 1, m.Running)
	assert.Equal(t, 1, m.Completed)
	assert.Equal(t, 1, m.Pending)
}

func TestReadStateVersionBumpsOnMutation(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, uint64(0), ReadStateVersion(dir))

	s, err := Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.CreateLoop(&domain.Loop{ID: "v00001-loop-x", Type: "plan", Status: domain.LoopPending})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), ReadStateVersion(dir))

	_, err = s.CreateLoop(&domain.Loop{ID: "v00002-loop-y", Type: "plan", Status: domain.LoopPending})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ReadStateVersion(dir))
}

func TestSubmitAfterCloseReturnsChannelError(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Close())
	_, err := s.GetLoop("anything")
	assert.Equal(t, ErrChannel, err)
}

// noErr adapts a (string, error)-returning call for require.NoError.
func noErr(_ string, err error) error { return err }
