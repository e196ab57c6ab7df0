package logger_test

import (
	"testing"
	"time"

	"github.com/mcp-scooter/bridge/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func TestLogger_AddAppearsInEntries(t *testing.T) {
	l := newTestLogger(t)
	l.Add("info", "echo", "guest started")

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "echo", entries[0].GuestID)
	assert.Equal(t, "guest started", entries[0].Message)
}

func TestLogger_RedactsAPIKeys(t *testing.T) {
	l := newTestLogger(t)
	l.Add("info", "", "authorized with sk-abcdefgh12345678")

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Message, "sk-abcdefgh12345678")
	assert.Contains(t, entries[0].Message, "sk-REDACTED")
}

func TestLogger_SubscribeReceivesNewEntries(t *testing.T) {
	l := newTestLogger(t)
	sub := l.Subscribe()
	defer l.Unsubscribe(sub)

	l.Add("info", "echo", "hello")

	select {
	case entry := <-sub:
		assert.Equal(t, "hello", entry.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber entry")
	}
}

func TestLogger_ClearResetsBuffer(t *testing.T) {
	l := newTestLogger(t)
	l.Add("info", "echo", "one")
	require.NoError(t, l.Clear())
	assert.Empty(t, l.Entries())
}

func TestLogger_RingBufferCapsAtMax(t *testing.T) {
	l := newTestLogger(t)
	for i := 0; i < 1500; i++ {
		l.Add("info", "echo", "line")
	}
	assert.LessOrEqual(t, len(l.Entries()), 1000)
}
