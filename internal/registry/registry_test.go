package registry_test

import (
	"testing"
	"time"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/pump"
	"github.com/mcp-scooter/bridge/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoScript = `
	async function main() {
		while (true) {
			const s = await MCP.readLine();
			MCP.writeLine(s);
		}
	}
	main();
`

func newTestRegistry() *registry.Registry {
	return registry.New(pump.Config{WatchdogRounds: 2000, RoundSleep: time.Millisecond}, 0)
}

func TestRegistry_StartCallStop(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	require.NoError(t, r.Start("echo", echoScript, nil, guest.Capabilities{}))
	assert.Contains(t, r.List(), "echo")

	out, err := r.Call("echo", `{"a":1}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	require.NoError(t, r.Stop("echo"))
	assert.NotContains(t, r.List(), "echo")
}

func TestRegistry_DuplicateStartRejected(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	require.NoError(t, r.Start("echo", echoScript, nil, guest.Capabilities{}))
	err := r.Start("echo", echoScript, nil, guest.Capabilities{})
	assert.Error(t, err)

	require.NoError(t, r.Stop("echo"))
	assert.NoError(t, r.Start("echo", echoScript, nil, guest.Capabilities{}))
}

func TestRegistry_CallUnknownGuestFails(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	_, err := r.Call("nope", `{}`, nil)
	assert.Error(t, err)
}

func TestRegistry_StartFailureDoesNotRegisterGuest(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	err := r.Start("bad", "not valid js (((", nil, guest.Capabilities{})
	require.Error(t, err)
	assert.NotContains(t, r.List(), "bad")
}
