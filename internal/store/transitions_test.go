package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdaemon/taskdaemon/internal/domain"
)

func TestStartDraftAndActivateDraftAreEquivalent(t *testing.T) {
	s, fn := newTestStore(t)

	_, err := s.CreateExecution(&domain.LoopExecution{ID: "d00001-exec-a", Status: domain.ExecDraft})
	require.NoError(t, err)
	require.NoError(t, s.StartDraft("d00001-exec-a"))
	e, err := s.GetExecution("d00001-exec-a")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecPending, e.Status)
	assert.Contains(t, fn.pending, "d00001-exec-a")

	_, err = s.CreateExecution(&domain.LoopExecution{ID: "d00002-exec-b", Status: domain.ExecDraft})
	require.NoError(t, err)
	require.NoError(t, s.ActivateDraft("d00002-exec-b"))
	e2, err := s.GetExecution("d00002-exec-b")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecPending, e2.Status)
	assert.Contains(t, fn.pending, "d00002-exec-b")
}

func TestStartDraftRejectsNonDraft(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateExecution(&domain.LoopExecution{ID: "d00003-exec-c", Status: domain.ExecRunning})
	require.NoError(t, err)

	err = s.StartDraft("d00003-exec-c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Running")
	assert.Contains(t, err.Error(), "Draft")
}

func TestPauseAndResumeExecution(t *testing.T) {
	s, fn := newTestStore(t)
	_, err := s.CreateExecution(&domain.LoopExecution{ID: "p00001-exec-a", Status: domain.ExecRunning})
	require.NoError(t, err)

	require.NoError(t, s.PauseExecution("p00001-exec-a"))
	e, err := s.GetExecution("p00001-exec-a")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecPaused, e.Status)

	require.NoError(t, s.ResumeExecution("p00001-exec-a"))
	e, err = s.GetExecution("p00001-exec-a")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecRunning, e.Status)
	assert.Contains(t, fn.resumed, "p00001-exec-a")
}

func TestResumeRejectsRunning(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateExecution(&domain.LoopExecution{ID: "p00002-exec-b", Status: domain.ExecRunning})
	require.NoError(t, err)

	err = s.ResumeExecution("p00002-exec-b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Paused or Blocked")
}

func TestResumeAcceptsBlocked(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateExecution(&domain.LoopExecution{ID: "p00003-exec-c", Status: domain.ExecBlocked})
	require.NoError(t, err)
	require.NoError(t, s.ResumeExecution("p00003-exec-c"))
}

func TestCancelExecutionNonTerminal(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateExecution(&domain.LoopExecution{ID: "c00001-exec-a", Status: domain.ExecRunning})
	require.NoError(t, err)
	require.NoError(t, s.CancelExecution("c00001-exec-a"))
	e, err := s.GetExecution("c00001-exec-a")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecStopped, e.Status)
}

func TestCancelExecutionTerminalFails(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateExecution(&domain.LoopExecution{ID: "c00002-exec-b", Status: domain.ExecComplete})
	require.NoError(t, err)
	err = s.CancelExecution("c00002-exec-b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-terminal")
}

func TestPauseExecutionRejectsNonRunning(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateExecution(&domain.LoopExecution{ID: "c00003-exec-c", Status: domain.ExecPending})
	require.NoError(t, err)
	err = s.PauseExecution("c00003-exec-c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Pending")
}
