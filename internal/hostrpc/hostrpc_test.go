package hostrpc_test

import (
	"testing"
	"time"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/hostrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RoundTrip(t *testing.T) {
	var sentFrame hostrpc.Frame
	router := hostrpc.New(func(f hostrpc.Frame) error {
		sentFrame = f
		return nil
	}, time.Second)

	done := make(chan guest.HostResult, 1)
	go func() {
		done <- router.For("guest-a").RequestHost(guest.HostRequest{ID: "1", Method: "open_tab"})
	}()

	// Wait until the send callback has run, then deliver the reply using
	// the id the router actually sent (it qualifies/prefixes the guest id).
	require.Eventually(t, func() bool { return sentFrame.ID != "" }, time.Second, time.Millisecond)
	ok := router.Deliver(sentFrame.ID, guest.HostResult{Result: map[string]interface{}{"title": "T"}})
	require.True(t, ok)

	result := <-done
	assert.Equal(t, "T", result.Result.(map[string]interface{})["title"])
}

func TestRouter_TimeoutReapsPending(t *testing.T) {
	router := hostrpc.New(func(hostrpc.Frame) error { return nil }, 10*time.Millisecond)

	result := router.For("guest-a").RequestHost(guest.HostRequest{ID: "1", Method: "open_tab"})
	assert.NotEmpty(t, result.Err)
	assert.Equal(t, 0, router.Pending())
}

func TestRouter_OrphanReplyIsDroppedNotPanicked(t *testing.T) {
	router := hostrpc.New(func(hostrpc.Frame) error { return nil }, time.Second)
	var orphanID string
	router.OnOrphan(func(id string) { orphanID = id })

	ok := router.Deliver("no-such-id", guest.HostResult{Result: "x"})
	assert.False(t, ok)
	assert.Equal(t, "no-such-id", orphanID)
}
