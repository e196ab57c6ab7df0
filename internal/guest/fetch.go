package guest

import "github.com/dop251/goja"

func (g *Guest) jsFetch() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		promise, resolve, reject := g.VM.NewPromise()
		if len(call.Arguments) == 0 {
			reject("fetch: missing url")
			return g.VM.ToValue(promise)
		}
		url := call.Arguments[0].String()
		var options map[string]interface{}
		if len(call.Arguments) > 1 {
			if m, ok := call.Arguments[1].Export().(map[string]interface{}); ok {
				options = m
			}
		}

		g.nextFetchID++
		id := g.nextFetchID
		g.fetchPromises[id] = pendingPromise{resolve: resolve, reject: reject}
		g.fetchQueue = append(g.fetchQueue, FetchRequest{ID: id, URL: url, Options: options})

		return g.VM.ToValue(promise)
	}
}

// TakeFetchQueue drains and returns pending fetch descriptors for the pump
// to service outside the interpreter lock (spec §4.2 phase 2).
func (g *Guest) TakeFetchQueue() []FetchRequest {
	if len(g.fetchQueue) == 0 {
		return nil
	}
	out := g.fetchQueue
	g.fetchQueue = nil
	return out
}

// ResolveFetch injects a FetchResult produced outside the interpreter and
// settles the corresponding promise. Every minted fetch id must eventually
// be resolved exactly once or the guest torn down (spec §3 invariants).
func (g *Guest) ResolveFetch(id int64, result FetchResult) {
	p, ok := g.fetchPromises[id]
	if !ok {
		return
	}
	delete(g.fetchPromises, id)
	obj := g.VM.NewObject()
	_ = obj.Set("status", result.Status)
	_ = obj.Set("body", result.Body)
	if result.Err != "" {
		_ = obj.Set("error", result.Err)
	}
	p.resolve(obj)
}
