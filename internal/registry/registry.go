// Package registry implements the guest registry (spec §4.7): process-wide
// ownership of guest handles keyed by id, with start/call/stop/list
// operations guarded by a reader/writer lock.
//
// The shape — a guarded map plus a background idle sweep invoking a
// teardown callback outside the lock — generalizes the teacher's
// discovery.DiscoveryEngine (activeServers map, monitor()/cleanup()
// goroutines), retargeted from "external MCP server process" lifecycle to
// "in-process JS guest" lifecycle.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/pump"
	"github.com/mcp-scooter/bridge/internal/wasmtool"
)

// backend is the subset either a pump.Worker (in-process JS guest) or a
// wasmtool.Worker (WASM guest, spec §4.9) exposes to the registry. Both
// process work items from their own dedicated goroutine in submission
// order, so the registry never needs to know which one it's holding.
type backend interface {
	Submit(pump.WorkItem)
	Stop()
}

// Handle is the registry's record for one running guest.
type Handle struct {
	ID        string
	Caps      guest.Capabilities
	Runtime   string
	worker    backend
	startedAt time.Time
	lastUsed  time.Time
	mu        sync.Mutex
}

func (h *Handle) touch() {
	h.mu.Lock()
	h.lastUsed = time.Now()
	h.mu.Unlock()
}

func (h *Handle) idleSince() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastUsed
}

// Registry owns every guest currently running in the process.
type Registry struct {
	mu     sync.RWMutex
	guests map[string]*Handle

	pumpConfig  pump.Config
	idleTimeout time.Duration // 0 disables the idle sweep

	stopSweep chan struct{}
	sweepDone chan struct{}
}

// New constructs an empty registry. idleTimeout of 0 disables the optional
// idle-guest sweep (the spec's hard core has no auto-reap requirement — a
// guest's lifetime is exactly start-to-stop — so this is an operational
// addition, not a core invariant).
func New(pumpConfig pump.Config, idleTimeout time.Duration) *Registry {
	r := &Registry{
		guests:      make(map[string]*Handle),
		pumpConfig:  pumpConfig,
		idleTimeout: idleTimeout,
	}
	if idleTimeout > 0 {
		r.stopSweep = make(chan struct{})
		r.sweepDone = make(chan struct{})
		go r.sweep()
	}
	return r
}

// Start constructs a sandbox for id, evaluates code in it, and registers
// the resulting handle. It fails if id already exists (spec §4.7, §8:
// "start(id) fails until stop(id) completes").
func (r *Registry) Start(id, code string, env map[string]string, caps guest.Capabilities) error {
	return r.StartWithRuntime(id, code, env, caps, "js")
}

// StartWithRuntime is Start generalized to pick a guest backend: "js" (the
// default, an in-process goja sandbox) or "wasm" (spec §4.9 — code is the
// path to a compiled WebAssembly module run via wazero instead of JS
// source).
func (r *Registry) StartWithRuntime(id, code string, env map[string]string, caps guest.Capabilities, runtime string) error {
	if runtime == "" {
		runtime = "js"
	}

	r.mu.Lock()
	if _, exists := r.guests[id]; exists {
		r.mu.Unlock()
		return fmt.Errorf("registry: guest %q already running", id)
	}
	// Reserve the slot before releasing the lock so a concurrent Start with
	// the same id cannot race past this check while sandbox construction
	// (which may run guest setup code) is in flight.
	r.guests[id] = nil
	r.mu.Unlock()

	var w backend
	switch runtime {
	case "js":
		g, err := guest.New(id, code, env, caps, nowMs)
		if err != nil {
			r.mu.Lock()
			delete(r.guests, id)
			r.mu.Unlock()
			return err
		}
		jw := pump.NewWorker(id, g, r.pumpConfig)
		go jw.Run()
		w = jw

	case "wasm":
		ww, err := wasmtool.New(context.Background(), id, code, env, wasmtool.Config{})
		if err != nil {
			r.mu.Lock()
			delete(r.guests, id)
			r.mu.Unlock()
			return err
		}
		go ww.Run()
		w = ww

	default:
		r.mu.Lock()
		delete(r.guests, id)
		r.mu.Unlock()
		return fmt.Errorf("registry: unknown runtime %q", runtime)
	}

	h := &Handle{ID: id, Caps: caps, Runtime: runtime, worker: w, startedAt: time.Now(), lastUsed: time.Now()}

	r.mu.Lock()
	r.guests[id] = h
	r.mu.Unlock()
	return nil
}

func nowMs() int64 { return time.Now().UnixMilli() }

// Call routes an MCP request to guest id and waits for its correlated
// reply. hostRouter may be nil if the calling transport cannot round-trip
// host calls.
func (r *Registry) Call(id, payload string, hostRouter pump.HostRouter) (string, error) {
	r.mu.RLock()
	h, ok := r.guests[id]
	r.mu.RUnlock()
	if !ok || h == nil {
		return "", fmt.Errorf("registry: no such guest %q", id)
	}
	h.touch()

	reply := make(chan pump.Result, 1)
	h.worker.Submit(pump.WorkItem{Payload: payload, Reply: reply, HostRouter: hostRouter})
	res := <-reply
	return res.JSON, res.Err
}

// Stop removes id from the registry and winds down its pump worker,
// blocking until the worker has exited.
func (r *Registry) Stop(id string) error {
	r.mu.Lock()
	h, ok := r.guests[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("registry: no such guest %q", id)
	}
	delete(r.guests, id)
	r.mu.Unlock()

	if h != nil {
		h.worker.Stop()
	}
	return nil
}

// List returns a snapshot of ids currently running.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.guests))
	for id, h := range r.guests {
		if h != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close stops the idle sweep (if running) and every remaining guest.
func (r *Registry) Close() {
	if r.stopSweep != nil {
		close(r.stopSweep)
		<-r.sweepDone
	}
	for _, id := range r.List() {
		_ = r.Stop(id)
	}
}

func (r *Registry) sweep() {
	defer close(r.sweepDone)
	ticker := time.NewTicker(r.idleTimeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopSweep:
			return
		case <-ticker.C:
			r.reapIdle()
		}
	}
}

func (r *Registry) reapIdle() {
	cutoff := time.Now().Add(-r.idleTimeout)
	var stale []string
	r.mu.RLock()
	for id, h := range r.guests {
		if h != nil && h.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	// Stop outside the lock: Stop() blocks on worker wind-down, which must
	// not happen while holding the registry lock other callers need.
	for _, id := range stale {
		_ = r.Stop(id)
	}
}
