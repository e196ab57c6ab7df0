// Package hostrpc implements the host round-trip protocol (spec §4.4): when
// a guest calls MCP.requestHost, the pump forwards (id, method, params,
// context) outward; the extension eventually replies with the same id plus
// a result or error, and the reply must be routed back to the correlated
// waiter.
//
// The correlation table here generalizes the teacher's DiscoveryEngine
// idle-server bookkeeping (a guarded map reaped on a time basis) from
// "reap idle external servers" to "reap stale pending replies".
package hostrpc

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/pump"
)

// Frame is the outward shape of a host_request frame (spec §6).
type Frame struct {
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	Context interface{} `json:"context,omitempty"`
}

// Sender delivers a host_request frame to the extension over whichever
// transport owns this Router (stdio frame writer, or a WebSocket send).
type Sender func(Frame) error

// Router correlates outward host_request frames with inward host_response
// frames for every guest multiplexed onto one transport. Ids are qualified
// with the guest id so that two guests sharing a transport never collide
// (spec §4.4 "Correlation scope").
type Router struct {
	mu       sync.Mutex
	pending  map[string]chan guest.HostResult
	send     Sender
	deadline time.Duration
	seq      uint64
	onOrphan func(id string)
}

// New constructs a Router bound to a Sender. deadline is the
// implementation-defined reap timeout (spec §4.4); zero selects 30s.
func New(send Sender, deadline time.Duration) *Router {
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	return &Router{
		pending:  make(map[string]chan guest.HostResult),
		send:     send,
		deadline: deadline,
		onOrphan: func(string) {},
	}
}

// OnOrphan installs a callback invoked when a host_response frame arrives
// with no matching pending request (spec §4.4: "logged and dropped").
func (r *Router) OnOrphan(fn func(id string)) {
	r.onOrphan = fn
}

// For returns a pump.HostRouter scoped to one guest; every call qualifies
// the guest-minted id with guestID so replies demultiplex correctly.
func (r *Router) For(guestID string) pump.HostRouter {
	return &scopedRouter{parent: r, guestID: guestID}
}

type scopedRouter struct {
	parent  *Router
	guestID string
}

func (s *scopedRouter) RequestHost(req guest.HostRequest) guest.HostResult {
	qualified := fmt.Sprintf("%s/%s/%d", s.guestID, req.ID, atomic.AddUint64(&s.parent.seq, 1))

	ch := make(chan guest.HostResult, 1)
	s.parent.mu.Lock()
	s.parent.pending[qualified] = ch
	s.parent.mu.Unlock()

	frame := Frame{ID: qualified, Method: req.Method, Params: req.Params, Context: req.Context}
	if err := s.parent.send(frame); err != nil {
		s.parent.mu.Lock()
		delete(s.parent.pending, qualified)
		s.parent.mu.Unlock()
		return guest.HostResult{Err: fmt.Sprintf("send host_request: %v", err)}
	}

	select {
	case result := <-ch:
		return result
	case <-time.After(s.parent.deadline):
		s.parent.mu.Lock()
		delete(s.parent.pending, qualified)
		s.parent.mu.Unlock()
		return guest.HostResult{Err: "host round-trip timed out"}
	}
}

// Deliver routes an inbound host_response frame to its waiter. It reports
// whether a pending entry matched; callers should log (via OnOrphan) and
// drop unmatched replies rather than treating them as errors.
func (r *Router) Deliver(id string, result guest.HostResult) bool {
	r.mu.Lock()
	ch, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()

	if !ok {
		r.onOrphan(id)
		return false
	}
	ch <- result
	return true
}

// Pending reports how many host requests are currently awaiting a reply.
func (r *Router) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
