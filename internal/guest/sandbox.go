// Package guest implements the sandboxed JS runtime each guest program runs
// inside: a freshly constructed goja interpreter with host objects injected
// as ordinary global bindings (process, console, timers, fetch, MCP.*).
//
// Only the pump goroutine that owns a Guest may call its methods after
// construction; Guest carries no internal locking because the event-loop
// pump (internal/pump) already guarantees single-threaded, non-reentrant
// access to the interpreter.
package guest

import (
	"fmt"

	"github.com/dop251/goja"
)

// FetchRequest is a descriptor a guest's fetch() call appends to the
// fetch-request queue; the pump performs the actual HTTP call outside the
// interpreter and injects a FetchResult keyed by ID.
type FetchRequest struct {
	ID      int64
	URL     string
	Options map[string]interface{}
}

// FetchResult is injected back into the guest's fetch-response map.
type FetchResult struct {
	Status int
	Body   string
	Err    string
}

// HostRequest is a descriptor produced by MCP.requestHost; the pump forwards
// it outward and awaits a correlated HostResult.
type HostRequest struct {
	ID      string
	Method  string
	Params  interface{}
	Context interface{}
}

// HostResult is injected back into the guest's host-response map.
type HostResult struct {
	Result interface{}
	Err    string
}

// ConsoleEntry is one captured console.* call.
type ConsoleEntry struct {
	Level   string
	Message string
}

type pendingRead struct {
	resolve func(interface{})
}

type pendingPromise struct {
	resolve func(interface{})
	reject  func(interface{})
}

// Guest is one sandboxed JS program: its interpreter plus the interior
// queues described in spec §3 ("Guest interior state"). All fields below are
// touched exclusively by the owning pump goroutine.
type Guest struct {
	ID    string
	VM    *goja.Runtime
	Env   map[string]string
	Caps  Capabilities

	responses []string
	requests  []string
	read      *pendingRead

	timers      map[int64]*timer
	nextTimerID int64
	clockNowMs  func() int64

	fetchQueue     []FetchRequest
	fetchResults   map[int64]FetchResult
	fetchPromises  map[int64]pendingPromise
	nextFetchID    int64

	hostQueue    []HostRequest
	hostResults  map[string]HostResult
	hostPromises map[string]pendingPromise
	nextHostID   int64

	console []ConsoleEntry
}

type timer struct {
	id       int64
	fireAtMs int64
	periodMs int64 // 0 for one-shot
	fn       goja.Callable
	cleared  bool
}

// New constructs and initialises a sandbox for one guest, evaluates script
// in that global scope, and returns the ready Guest. Any setup or evaluation
// error fails guest start (spec §4.1: "Any error during setup or initial
// evaluation fails the start operation.").
func New(id, script string, env map[string]string, caps Capabilities, nowMs func() int64) (*Guest, error) {
	g := &Guest{
		ID:            id,
		VM:            goja.New(),
		Env:           env,
		Caps:          caps,
		timers:        make(map[int64]*timer),
		fetchResults:  make(map[int64]FetchResult),
		fetchPromises: make(map[int64]pendingPromise),
		hostResults:   make(map[string]HostResult),
		hostPromises:  make(map[string]pendingPromise),
		clockNowMs:    nowMs,
	}

	if err := g.injectGlobals(); err != nil {
		return nil, fmt.Errorf("guest %s: inject globals: %w", id, err)
	}

	if _, err := g.VM.RunString(script); err != nil {
		return nil, fmt.Errorf("guest %s: initial evaluation: %w", id, err)
	}

	return g, nil
}

func (g *Guest) injectGlobals() error {
	vm := g.VM

	process := vm.NewObject()
	envObj := vm.NewObject()
	for k, v := range g.Env {
		_ = envObj.Set(k, v)
	}
	_ = process.Set("env", envObj)
	_ = process.Set("platform", "scooter-bridge")
	if err := vm.Set("process", process); err != nil {
		return err
	}

	console := vm.NewObject()
	for _, level := range []string{"log", "warn", "error", "info", "debug"} {
		level := level
		_ = console.Set(level, func(call goja.FunctionCall) goja.Value {
			g.console = append(g.console, ConsoleEntry{Level: level, Message: stringifyArgs(call.Arguments)})
			return goja.Undefined()
		})
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	if err := vm.Set("setTimeout", g.jsSetTimeout(false)); err != nil {
		return err
	}
	if err := vm.Set("setInterval", g.jsSetTimeout(true)); err != nil {
		return err
	}
	if err := vm.Set("clearTimeout", g.jsClearTimer()); err != nil {
		return err
	}
	if err := vm.Set("clearInterval", g.jsClearTimer()); err != nil {
		return err
	}

	// An empty AllowedHosts grant leaves fetch undefined in the guest.
	if len(g.Caps.AllowedHosts) > 0 {
		if err := vm.Set("fetch", g.jsFetch()); err != nil {
			return err
		}
	}

	mcp := vm.NewObject()
	_ = mcp.Set("readLine", g.jsReadLine())
	_ = mcp.Set("writeLine", g.jsWriteLine())
	_ = mcp.Set("requestHost", g.jsRequestHost())
	if err := vm.Set("MCP", mcp); err != nil {
		return err
	}

	// Non-goal: no real eval sandboxing beyond this. Removing the global
	// closes the obvious door; goja has no Function-constructor escape by
	// default.
	if err := vm.GlobalObject().Delete("eval"); err != nil {
		return err
	}

	return nil
}

func stringifyArgs(args []goja.Value) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a.String()
	}
	return out
}

// Tick re-enters the interpreter briefly so goja settles any promise
// reactions queued by a prior native call (fetch/host resolution, a fired
// timer). It is the pump's "drain microtasks" primitive.
func (g *Guest) Tick() error {
	_, err := g.VM.RunString("null")
	return err
}

// DrainConsole returns and clears captured console entries, in emission
// order, for the pump to forward to the log sink and broadcast channel.
func (g *Guest) DrainConsole() []ConsoleEntry {
	if len(g.console) == 0 {
		return nil
	}
	out := g.console
	g.console = nil
	return out
}

// PushRequest delivers an inbound work-item payload to the guest: if it is
// blocked on readLine, resolve immediately; otherwise queue it (spec §4.2,
// "Request delivery").
func (g *Guest) PushRequest(payload string) {
	if g.read != nil {
		resolve := g.read.resolve
		g.read = nil
		resolve(payload)
		return
	}
	g.requests = append(g.requests, payload)
}

// HasResponse reports whether the response queue is non-empty.
func (g *Guest) HasResponse() bool {
	return len(g.responses) > 0
}

// TakeLastResponse drains the response queue and returns the last entry
// (spec §3: "the last queued response is the answer to the current work
// item"). Earlier entries are discarded per the chosen "last wins" semantics
// (spec §9 open question, option a).
func (g *Guest) TakeLastResponse() string {
	last := g.responses[len(g.responses)-1]
	g.responses = nil
	return last
}
