package coordinator

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithLogAppendsDeliveredMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	c, err := NewWithLog(path)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Register("target"))
	require.NoError(t, c.Share("source", "target", "test_results", `{"pass":true}`))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())

	var ev loggedEvent
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
	assert.Equal(t, "target", ev.ToExecID)
	assert.Equal(t, "source", ev.FromExecID)
	assert.Equal(t, KindShare, ev.Kind)
	assert.Equal(t, "test_results", ev.ShareType)
}

func TestNilEventLogIsNoop(t *testing.T) {
	var l *eventLog
	l.append("x", shareMessage("a", "t", "d"))
	require.NoError(t, l.Close())
}
