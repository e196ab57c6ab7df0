package pump_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/pump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, script string, caps guest.Capabilities) *pump.Worker {
	t.Helper()
	g, err := guest.New(t.Name(), script, nil, caps, func() int64 { return time.Now().UnixMilli() })
	require.NoError(t, err)
	w := pump.NewWorker(t.Name(), g, pump.Config{
		WatchdogRounds: 2000,
		RoundSleep:     time.Millisecond,
	})
	go w.Run()
	t.Cleanup(w.Stop)
	return w
}

func call(w *pump.Worker, payload string) pump.Result {
	reply := make(chan pump.Result, 1)
	w.Submit(pump.WorkItem{Payload: payload, Reply: reply})
	return <-reply
}

func TestWorker_Echo(t *testing.T) {
	w := newTestWorker(t, `
		async function main() {
			while (true) {
				const s = await MCP.readLine();
				MCP.writeLine(s);
			}
		}
		main();
	`, guest.Capabilities{})

	res := call(w, `{"hello":1}`)
	require.NoError(t, res.Err)
	assert.Equal(t, `{"hello":1}`, res.JSON)
}

func TestWorker_DelayedResponseViaSetTimeout(t *testing.T) {
	w := newTestWorker(t, `
		async function main() {
			while (true) {
				const s = await MCP.readLine();
				setTimeout(function() { MCP.writeLine('{"ok":true}'); }, 50);
			}
		}
		main();
	`, guest.Capabilities{})

	res := call(w, `{}`)
	require.NoError(t, res.Err)
	assert.Equal(t, `{"ok":true}`, res.JSON)
}

func TestWorker_FetchPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		_, _ = rw.Write([]byte("abcde"))
	}))
	t.Cleanup(srv.Close)

	w := newTestWorker(t, `
		async function main() {
			while (true) {
				const req = await MCP.readLine();
				const body = JSON.parse(req);
				const resp = await fetch(body.url);
				MCP.writeLine(JSON.stringify({len: resp.body.length}));
			}
		}
		main();
	`, guest.Capabilities{AllowedHosts: []string{"*"}})

	res := call(w, `{"url":"`+srv.URL+`"}`)
	require.NoError(t, res.Err)
	assert.JSONEq(t, `{"len":5}`, res.JSON)
}

func TestWorker_Timeout(t *testing.T) {
	w := newTestWorker(t, `
		async function main() {
			while (true) {
				await MCP.readLine();
				// never writes back
			}
		}
		main();
	`, guest.Capabilities{})

	res := call(w, `{}`)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "Timeout waiting")
}

type fakeHostRouter struct {
	result guest.HostResult
}

func (f fakeHostRouter) RequestHost(req guest.HostRequest) guest.HostResult {
	return f.result
}

func TestWorker_HostRoundTrip(t *testing.T) {
	w := newTestWorker(t, `
		async function main() {
			while (true) {
				const req = await MCP.readLine();
				const body = JSON.parse(req);
				const r = await MCP.requestHost("open_tab", {url: body.url});
				MCP.writeLine(JSON.stringify({title: r.title}));
			}
		}
		main();
	`, guest.Capabilities{})

	reply := make(chan pump.Result, 1)
	w.Submit(pump.WorkItem{
		Payload:    `{"url":"https://x"}`,
		Reply:      reply,
		HostRouter: fakeHostRouter{result: guest.HostResult{Result: map[string]interface{}{"title": "T"}}},
	})
	res := <-reply
	require.NoError(t, res.Err)
	assert.JSONEq(t, `{"title":"T"}`, res.JSON)
}
