// Package pump implements the cooperative event-loop pump that drives one
// guest's microtask queue, timer wheel, and asynchronous host calls from a
// dedicated worker goroutine (spec §4.2).
//
// The interpreter inside a guest.Guest is single-threaded and non-reentrant;
// the pump is the only caller that ever touches it, and it never holds the
// "interpreter section" while awaiting outward I/O — fetches and host
// round-trips are drained strictly between interpreter advances. This is
// the design's central discipline (spec §9): violating it deadlocks under
// load.
package pump

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mcp-scooter/bridge/internal/guest"
)

// HostRouter forwards a guest's MCP.requestHost call outward and blocks
// until a correlated reply arrives or the implementation-defined deadline
// expires. A nil HostRouter on a Worker means the current transport cannot
// round-trip host calls at all.
type HostRouter interface {
	RequestHost(req guest.HostRequest) guest.HostResult
}

// ConsoleSink receives drained console entries for forwarding to the
// structured log sink and the process-wide broadcast channel.
type ConsoleSink func(guestID string, entries []guest.ConsoleEntry)

// Result is delivered on a WorkItem's reply channel.
type Result struct {
	JSON string
	Err  error
}

// WorkItem is one inbound RPC bound to a correlated reply channel (spec
// §3). HostRouter may be nil if the originating transport has no way to
// round-trip host calls.
type WorkItem struct {
	Payload    string
	Reply      chan Result
	HostRouter HostRouter
}

// Config tunes the pump's iteration limits. Zero values fall back to the
// spec's suggested defaults.
type Config struct {
	StartupRounds  int           // initial microtask rounds before any work arrives (spec: "typically 1000")
	WatchdogRounds int           // per-item interleaving cap (spec: "≈10000")
	RoundSleep     time.Duration // sleep between rounds (spec: "sub-millisecond")
	HTTPClient     *http.Client
	Console        ConsoleSink
	Now            func() int64
}

func (c Config) withDefaults() Config {
	if c.StartupRounds == 0 {
		c.StartupRounds = 1000
	}
	if c.WatchdogRounds == 0 {
		c.WatchdogRounds = 10000
	}
	if c.RoundSleep == 0 {
		c.RoundSleep = 200 * time.Microsecond
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.Console == nil {
		c.Console = func(string, []guest.ConsoleEntry) {}
	}
	return c
}

// Worker owns one guest's interpreter for its entire lifetime.
type Worker struct {
	guestID string
	g       *guest.Guest
	inbox   chan WorkItem
	stop    chan struct{}
	done    chan struct{}
	cfg     Config
}

// NewWorker constructs a worker for g. Call Run in its own goroutine.
func NewWorker(guestID string, g *guest.Guest, cfg Config) *Worker {
	return &Worker{
		guestID: guestID,
		g:       g,
		inbox:   make(chan WorkItem, 64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		cfg:     cfg.withDefaults(),
	}
}

// Submit enqueues a work item. It never blocks the caller beyond the
// inbox's buffer; ordering across calls from the same caller is preserved
// (spec §5: "Work items for the same guest are processed strictly in
// submission order").
func (w *Worker) Submit(item WorkItem) {
	w.inbox <- item
}

// Stop signals the worker to wind down: drop remaining work items (answering
// each on its reply channel with a cancellation error) and release the
// interpreter. Stop returns once the worker goroutine has exited.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// Run is the worker's main loop. It must run in its own goroutine.
func (w *Worker) Run() {
	defer close(w.done)

	w.primePump()

	for {
		select {
		case <-w.stop:
			w.drainRemaining()
			return
		case item := <-w.inbox:
			w.service(item)
		}
	}
}

// primePump runs the startup pump (spec §4.2): up to StartupRounds
// microtask/timer/queue rounds so a guest doing async setup has armed
// pending_read before any work arrives. Not arming by the end is not fatal.
func (w *Worker) primePump() {
	for i := 0; i < w.cfg.StartupRounds; i++ {
		w.advance(nil)
	}
}

func (w *Worker) drainRemaining() {
	for {
		select {
		case item := <-w.inbox:
			item.Reply <- Result{Err: fmt.Errorf("guest %s: stopped", w.guestID)}
		default:
			return
		}
	}
}

// service drives one work item to completion: deliver, then alternate
// microtask-drain and outward-queue-poll phases until a response appears or
// the watchdog is exhausted (spec §4.2 "Request delivery").
func (w *Worker) service(item WorkItem) {
	w.g.PushRequest(item.Payload)

	for round := 0; round < w.cfg.WatchdogRounds; round++ {
		w.advance(item.HostRouter)

		if w.g.HasResponse() {
			item.Reply <- Result{JSON: w.g.TakeLastResponse()}
			return
		}

		select {
		case <-w.stop:
			item.Reply <- Result{Err: fmt.Errorf("guest %s: stopped", w.guestID)}
			return
		default:
		}

		time.Sleep(w.cfg.RoundSleep)
	}

	item.Reply <- Result{Err: fmt.Errorf("guest %s: Timeout waiting for response", w.guestID)}
}

// advance runs one pump round: drain microtasks, process timers, forward
// console output, then poll the fetch and host-request queues strictly
// outside the interpreter section.
func (w *Worker) advance(router HostRouter) {
	_ = w.g.Tick()
	w.g.ProcessTimers()

	if entries := w.g.DrainConsole(); len(entries) > 0 {
		w.cfg.Console(w.guestID, entries)
	}

	for _, req := range w.g.TakeFetchQueue() {
		result := w.doFetch(req)
		w.g.ResolveFetch(req.ID, result)
	}

	for _, req := range w.g.TakeHostQueue() {
		if router == nil {
			w.g.ResolveHost(req.ID, guest.HostResult{Err: "no host transport attached for this call"})
			continue
		}
		w.g.ResolveHost(req.ID, router.RequestHost(req))
	}

	_ = w.g.Tick()
}
