package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdaemon/taskdaemon/internal/domain"
)

func TestConcurrentLimit(t *testing.T) {
	s := New(Config{MaxConcurrent: 2, MaxRequestsPerWindow: 1000, WindowDuration: time.Minute})

	require.Equal(t, Ready, s.Schedule("a", domain.PriorityNormal).Kind)
	require.Equal(t, Ready, s.Schedule("b", domain.PriorityNormal).Kind)

	d := s.Schedule("c", domain.PriorityNormal)
	require.Equal(t, Queued, d.Kind)
	require.Equal(t, 1, d.Position)

	s.Complete("a")
	state := s.State()
	assert.Equal(t, 2, state.Running) // TestableProperty5: never exceeds max_concurrent
	assert.Equal(t, 0, state.Queued)
}

// TestS3SchedulerPriority is end-to-end scenario S3.
func TestS3SchedulerPriority(t *testing.T) {
	s := New(Config{MaxConcurrent: 1, MaxRequestsPerWindow: 1000, WindowDuration: time.Minute})

	require.Equal(t, Ready, s.Schedule("A", domain.PriorityNormal).Kind)
	require.Equal(t, Queued, s.Schedule("B", domain.PriorityLow).Kind)
	require.Equal(t, Queued, s.Schedule("C", domain.PriorityHigh).Kind)

	s.Complete("A")

	state := s.State()
	require.Equal(t, 1, state.Running)
	require.Contains(t, s.running, "C")
}

// TestS4RateLimitWindow is end-to-end scenario S4.
func TestS4RateLimitWindow(t *testing.T) {
	s := New(Config{MaxConcurrent: 10, MaxRequestsPerWindow: 3, WindowDuration: 60 * time.Second})

	require.Equal(t, Ready, s.Schedule("A", domain.PriorityNormal).Kind)
	require.Equal(t, Ready, s.Schedule("B", domain.PriorityNormal).Kind)
	require.Equal(t, Ready, s.Schedule("C", domain.PriorityNormal).Kind)

	d := s.Schedule("D", domain.PriorityNormal)
	require.Equal(t, RateLimited, d.Kind)
	require.Greater(t, d.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, d.RetryAfter, 60*time.Second)
}

func TestDuplicateRejection(t *testing.T) {
	s := New(DefaultConfig())
	require.Equal(t, Ready, s.Schedule("x", domain.PriorityNormal).Kind)
	d := s.Schedule("x", domain.PriorityNormal)
	require.Equal(t, Rejected, d.Kind)
}

func TestCancel(t *testing.T) {
	s := New(Config{MaxConcurrent: 1, MaxRequestsPerWindow: 1000, WindowDuration: time.Minute})
	s.Schedule("running", domain.PriorityNormal)
	s.Schedule("queued", domain.PriorityNormal)

	require.True(t, s.Cancel("queued"))
	require.False(t, s.Cancel("running"))

	s.Complete("running")
	state := s.State()
	assert.Equal(t, 0, state.Running)
	assert.Equal(t, 0, state.Queued)
}

func TestPriorityOrderingByArrival(t *testing.T) {
	// TestableProperty7: among waiting requests, higher priority always
	// admitted before lower priority; ties broken by arrival order.
	s := New(Config{MaxConcurrent: 1, MaxRequestsPerWindow: 1000, WindowDuration: time.Minute})
	s.Schedule("running", domain.PriorityNormal)
	s.Schedule("low1", domain.PriorityLow)
	s.Schedule("normal1", domain.PriorityNormal)
	s.Schedule("high1", domain.PriorityHigh)
	s.Schedule("high2", domain.PriorityHigh)

	s.Complete("running")
	require.Contains(t, s.running, "high1")

	s.Complete("high1")
	require.Contains(t, s.running, "high2")
}
