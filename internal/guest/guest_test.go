package guest_test

import (
	"testing"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() int64 {
	return func() int64 { return ms }
}

func TestHostPatternMatching(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		host    string
		want    bool
	}{
		{"wildcard any", "*", "evil.com", true},
		{"suffix matches subdomain", "*.example.com", "api.example.com", true},
		{"suffix matches bare domain", "*.example.com", "example.com", true},
		{"suffix rejects other domain", "*.example.com", "evil.com", false},
		{"exact matches only exactly", "api.example.com", "api.example.com", true},
		{"exact rejects subdomain", "api.example.com", "other.api.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := guest.Capabilities{AllowedHosts: []string{tt.pattern}}
			assert.Equal(t, tt.want, caps.HostAllowed(tt.host))
		})
	}
}

func TestCapabilities_EmptyListForbidsAll(t *testing.T) {
	caps := guest.Capabilities{}
	assert.False(t, caps.HostAllowed("anything.com"))
}

func TestNew_EvaluationErrorFailsStart(t *testing.T) {
	_, err := guest.New("bad", "this is not valid javascript (((", nil, guest.Capabilities{}, fixedClock(0))
	require.Error(t, err)
}

func TestGuest_EchoViaReadWriteLine(t *testing.T) {
	script := `
		async function main() {
			while (true) {
				const s = await MCP.readLine();
				MCP.writeLine(s);
			}
		}
		main();
	`
	g, err := guest.New("echo", script, nil, guest.Capabilities{}, fixedClock(0))
	require.NoError(t, err)

	g.PushRequest(`{"hello":1}`)

	// Force goja to settle the pending promise chain by re-entering the VM.
	_, err = g.VM.RunString("null")
	require.NoError(t, err)

	require.True(t, g.HasResponse())
	assert.Equal(t, `{"hello":1}`, g.TakeLastResponse())
}

func TestGuest_DeletesEval(t *testing.T) {
	g, err := guest.New("noeval", "1", nil, guest.Capabilities{}, fixedClock(0))
	require.NoError(t, err)
	v, err := g.VM.RunString("typeof eval")
	require.NoError(t, err)
	assert.Equal(t, "undefined", v.String())
}

func TestGuest_TimerFiresOnProcessTimers(t *testing.T) {
	now := int64(0)
	clock := func() int64 { return now }
	script := `
		var fired = false;
		setTimeout(function() { fired = true; }, 10);
	`
	g, err := guest.New("timer", script, nil, guest.Capabilities{}, clock)
	require.NoError(t, err)

	g.ProcessTimers()
	v, err := g.VM.RunString("fired")
	require.NoError(t, err)
	assert.False(t, v.ToBoolean(), "timer should not fire before its delay elapses")

	now = 11
	g.ProcessTimers()
	v, err = g.VM.RunString("fired")
	require.NoError(t, err)
	assert.True(t, v.ToBoolean())
}

func TestGuest_FetchQueueAndResolve(t *testing.T) {
	script := `
		var bodyLen = -1;
		fetch("https://api.example.com/x").then(function(r) { bodyLen = r.body.length; });
	`
	g, err := guest.New("fetcher", script, nil, guest.Capabilities{AllowedHosts: []string{"*.example.com"}}, fixedClock(0))
	require.NoError(t, err)

	reqs := g.TakeFetchQueue()
	require.Len(t, reqs, 1)
	assert.Equal(t, "https://api.example.com/x", reqs[0].URL)

	g.ResolveFetch(reqs[0].ID, guest.FetchResult{Status: 200, Body: "abcde"})
	_, err = g.VM.RunString("null")
	require.NoError(t, err)

	v, err := g.VM.RunString("bodyLen")
	require.NoError(t, err)
	assert.EqualValues(t, 5, v.ToInteger())
}

func TestGuest_HostRoundTrip(t *testing.T) {
	script := `
		var title = "";
		MCP.requestHost("open_tab", {url: "https://x"}).then(function(r) { title = r.title; });
	`
	g, err := guest.New("host", script, nil, guest.Capabilities{}, fixedClock(0))
	require.NoError(t, err)

	reqs := g.TakeHostQueue()
	require.Len(t, reqs, 1)
	assert.Equal(t, "open_tab", reqs[0].Method)

	g.ResolveHost(reqs[0].ID, guest.HostResult{Result: map[string]interface{}{"title": "T"}})
	_, err = g.VM.RunString("null")
	require.NoError(t, err)

	v, err := g.VM.RunString("title")
	require.NoError(t, err)
	assert.Equal(t, "T", v.String())
}
