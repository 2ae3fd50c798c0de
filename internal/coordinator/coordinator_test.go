package coordinator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDuplicateFails(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("a"))
	assert.Error(t, c.Register("a"))
}

func TestStopDeliversToMailbox(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("target"))

	require.NoError(t, c.Stop("target", "manager", "shutdown requested"))

	msg, ok := c.TryRecv("target")
	require.True(t, ok)
	assert.Equal(t, KindStop, msg.Kind)
	assert.Equal(t, "manager", msg.From)
	assert.Equal(t, "shutdown requested", msg.Reason)
}

func TestDeliverToUnregisteredTargetFails(t *testing.T) {
	c := New()
	err := c.Share("a", "ghost", "schema", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no execution registered")
}

func TestMailboxOverflowReportsDeliveryError(t *testing.T) {
	c := New()
	c.mailboxDepth = 1
	require.NoError(t, c.Register("target"))

	require.NoError(t, c.Share("a", "target", "first", "1"))
	err := c.Share("a", "target", "second", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailbox for \"target\" is full")
}

func TestQueryAndReplyQuery(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("asker"))
	require.NoError(t, c.Register("answerer"))

	type result struct {
		answer string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		answer, err := c.Query("asker", "answerer", "what's your status?", time.Second)
		done <- result{answer, err}
	}()

	var msg Message
	require.Eventually(t, func() bool {
		m, ok := c.TryRecv("answerer")
		if ok {
			msg = m
		}
		return ok
	}, time.Second, time.Millisecond)

	assert.Equal(t, KindQuery, msg.Kind)
	assert.Equal(t, "asker", msg.From)
	assert.Equal(t, "what's your status?", msg.Question)
	require.NotEmpty(t, msg.QueryID)

	require.NoError(t, c.ReplyQuery(msg.QueryID, "all good"))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "all good", r.answer)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Query to return")
	}
}

func TestQueryTimesOutWithoutReply(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("answerer"))

	_, err := c.Query("asker", "answerer", "anyone there?", 10*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestReplyQueryUnknownIDFails(t *testing.T) {
	c := New()
	err := c.ReplyQuery("ghost-query-id", "answer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending query")
}

func TestPublishSkipsSender(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("a"))
	require.NoError(t, c.Register("b"))
	c.Subscribe("loop-ready", "a")
	c.Subscribe("loop-ready", "b")

	c.Publish("loop-ready", "a", "loop_ready", `{"loop_id":"x"}`)

	_, ok := c.TryRecv("a")
	assert.False(t, ok, "publisher should not receive its own notification")

	msg, ok := c.TryRecv("b")
	require.True(t, ok)
	assert.Equal(t, KindNotification, msg.Kind)
	assert.Equal(t, "loop_ready", msg.EventType)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("b"))
	c.Subscribe("topic", "b")
	c.Unsubscribe("topic", "b")

	c.Publish("topic", "a", "event", "{}")

	_, ok := c.TryRecv("b")
	assert.False(t, ok)
}

func TestUnregisterRemovesFromTopics(t *testing.T) {
	c := New()
	require.NoError(t, c.Register("b"))
	c.Subscribe("topic", "b")
	c.Unregister("b")
	assert.NotContains(t, c.topics["topic"], "b")

	err := c.Stop("b", "a", "bye")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no execution registered")
}

func TestTryRecvOnUnregisteredReturnsFalse(t *testing.T) {
	c := New()
	_, ok := c.TryRecv("nobody")
	assert.False(t, ok)
}
