package guest

import "github.com/dop251/goja"

func (g *Guest) jsSetTimeout(interval bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		fn, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		var delayMs int64
		if len(call.Arguments) > 1 {
			delayMs = call.Arguments[1].ToInteger()
		}
		g.nextTimerID++
		id := g.nextTimerID
		t := &timer{
			id:       id,
			fireAtMs: g.clockNowMs() + delayMs,
		}
		if interval {
			t.periodMs = delayMs
			if t.periodMs <= 0 {
				t.periodMs = 1
			}
		}
		t.fn = func(this goja.Value, args ...goja.Value) (goja.Value, error) {
			return fn(goja.Undefined(), args...)
		}
		g.timers[id] = t
		return g.VM.ToValue(id)
	}
}

func (g *Guest) jsClearTimer() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		id := call.Arguments[0].ToInteger()
		if t, ok := g.timers[id]; ok {
			t.cleared = true
			delete(g.timers, id)
		}
		return goja.Undefined()
	}
}

// ProcessTimers runs expired callbacks and reschedules intervals. The pump
// invokes this after every microtask-drain batch (spec §4.2 phase 1); it
// plays the role of the "guest-provided process timers function".
func (g *Guest) ProcessTimers() {
	now := g.clockNowMs()
	for id, t := range g.timers {
		if t.cleared || t.fireAtMs > now {
			continue
		}
		if t.periodMs == 0 {
			delete(g.timers, id)
		} else {
			t.fireAtMs = now + t.periodMs
		}
		if t.fn != nil {
			_, _ = t.fn(goja.Undefined())
		}
	}
}

// HasPendingTimers reports whether any timer remains armed (an interval
// keeps firing for the guest's lifetime until cleared or the guest stops).
func (g *Guest) HasPendingTimers() bool {
	return len(g.timers) > 0
}
