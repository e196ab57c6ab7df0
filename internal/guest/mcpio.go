package guest

import (
	"fmt"

	"github.com/dop251/goja"
)

func (g *Guest) jsReadLine() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		promise, resolve, _ := g.VM.NewPromise()
		if len(g.requests) > 0 {
			next := g.requests[0]
			g.requests = g.requests[1:]
			resolve(next)
			return g.VM.ToValue(promise)
		}
		g.read = &pendingRead{resolve: resolve}
		return g.VM.ToValue(promise)
	}
}

func (g *Guest) jsWriteLine() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		g.responses = append(g.responses, call.Arguments[0].String())
		return goja.Undefined()
	}
}

func (g *Guest) jsRequestHost() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		promise, resolve, reject := g.VM.NewPromise()
		if len(call.Arguments) == 0 {
			reject("requestHost: missing method")
			return g.VM.ToValue(promise)
		}
		method := call.Arguments[0].String()
		var params interface{}
		if len(call.Arguments) > 1 {
			params = call.Arguments[1].Export()
		}

		g.nextHostID++
		id := fmt.Sprintf("%d", g.nextHostID)
		g.hostPromises[id] = pendingPromise{resolve: resolve, reject: reject}
		g.hostQueue = append(g.hostQueue, HostRequest{ID: id, Method: method, Params: params})

		return g.VM.ToValue(promise)
	}
}

// TakeHostQueue drains and returns pending host-request descriptors.
func (g *Guest) TakeHostQueue() []HostRequest {
	if len(g.hostQueue) == 0 {
		return nil
	}
	out := g.hostQueue
	g.hostQueue = nil
	return out
}

// ResolveHost injects a HostResult for a prior MCP.requestHost call and
// settles its promise with {result} or rejects with {err} (spec §4.1,
// §4.4).
func (g *Guest) ResolveHost(id string, result HostResult) {
	p, ok := g.hostPromises[id]
	if !ok {
		return
	}
	delete(g.hostPromises, id)
	if result.Err != "" {
		p.reject(result.Err)
		return
	}
	p.resolve(g.VM.ToValue(result.Result))
}
