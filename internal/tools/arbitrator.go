// Package tools implements the tool-call arbitrator (spec §4.5): it unifies
// two execution backends — in-process JS guests served by the registry, and
// extension-side guests reached through a poll/submit queue — behind one
// uniform call_tool operation.
//
// The dispatch-table shape (synthesize an MCP request, try local delivery,
// fall back to a queue) generalizes the teacher's discovery.go CallTool
// plus builtin.go's meta-tool dispatch idiom.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcp-scooter/bridge/internal/pump"
	"github.com/mcp-scooter/bridge/internal/rpc"
)

// InProcessCaller is the subset of internal/registry.Registry the
// arbitrator needs: route a raw MCP request to a named guest.
type InProcessCaller interface {
	Call(id, payload string, hostRouter pump.HostRouter) (string, error)
}

// Params is the call_tool request shape.
type Params struct {
	ServerID string                 `json:"serverId"`
	ToolName string                 `json:"toolName"`
	Args     map[string]interface{} `json:"args"`
}

// PendingCall describes one queued extension-side call for
// poll_pending_calls.
type PendingCall struct {
	ID       string                 `json:"id"`
	ServerID string                 `json:"serverId"`
	ToolName string                 `json:"toolName"`
	Args     map[string]interface{} `json:"args"`
}

type pendingEntry struct {
	call PendingCall

	mu       sync.Mutex
	resolved bool
	result   map[string]interface{}
	errMsg   string
}

// Arbitrator routes call_tool requests to an in-process guest first,
// falling back unconditionally to the extension-side queue on any
// in-process failure (spec §4.5: "the arbitrator cannot distinguish 'no
// such in-process guest' from 'guest failed'; both paths try the queue").
type Arbitrator struct {
	registry InProcessCaller

	mu      sync.Mutex
	pending map[string]*pendingEntry
	seq     uint64

	pollTimeout  time.Duration
	pollInterval time.Duration
}

// New constructs an Arbitrator. pollTimeout/pollInterval default to the
// spec's 60s / 100ms when zero.
func New(registry InProcessCaller, pollTimeout, pollInterval time.Duration) *Arbitrator {
	if pollTimeout <= 0 {
		pollTimeout = 60 * time.Second
	}
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &Arbitrator{
		registry:     registry,
		pending:      make(map[string]*pendingEntry),
		pollTimeout:  pollTimeout,
		pollInterval: pollInterval,
	}
}

// CallTool implements mcp.call_tool.
func (a *Arbitrator) CallTool(ctx context.Context, p Params) (map[string]interface{}, error) {
	if result, err := a.callInProcess(p); err == nil {
		return result, nil
	}
	return a.callViaQueue(ctx, p)
}

func (a *Arbitrator) callInProcess(p Params) (map[string]interface{}, error) {
	reqPayload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      p.ToolName,
			"arguments": p.Args,
		},
	})
	if err != nil {
		return nil, err
	}

	out, err := a.registry.Call(p.ServerID, string(reqPayload), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Result map[string]interface{} `json:"result"`
		Error  *rpc.Error              `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		return nil, fmt.Errorf("call_tool: malformed in-process response: %w", err)
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	return envelope.Result, nil
}

func (a *Arbitrator) callViaQueue(ctx context.Context, p Params) (map[string]interface{}, error) {
	id := fmt.Sprintf("call-%d", atomic.AddUint64(&a.seq, 1))
	entry := &pendingEntry{call: PendingCall{ID: id, ServerID: p.ServerID, ToolName: p.ToolName, Args: p.Args}}

	a.mu.Lock()
	a.pending[id] = entry
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.pending, id)
		a.mu.Unlock()
	}()

	deadline := time.Now().Add(a.pollTimeout)
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		if result, errMsg, ok := entry.snapshot(); ok {
			if errMsg != "" {
				return nil, rpc.NewError(rpc.CodeDomainError, errMsg)
			}
			return result, nil
		}
		if time.Now().After(deadline) {
			return nil, rpc.NewError(rpc.CodeDomainError, "tool call timed out waiting for extension-side result")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *pendingEntry) snapshot() (map[string]interface{}, string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, e.errMsg, e.resolved
}

// PollPendingCalls returns every call currently waiting on the
// extension-side queue.
func (a *Arbitrator) PollPendingCalls() []PendingCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]PendingCall, 0, len(a.pending))
	for _, e := range a.pending {
		if !e.isResolved() {
			out = append(out, e.call)
		}
	}
	return out
}

func (e *pendingEntry) isResolved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolved
}

// SubmitCallResult delivers a result for a pending extension-side call.
func (a *Arbitrator) SubmitCallResult(id string, result map[string]interface{}, errMsg string) error {
	a.mu.Lock()
	entry, ok := a.pending[id]
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("tools: no pending call %q", id)
	}
	entry.mu.Lock()
	entry.resolved = true
	entry.result = result
	entry.errMsg = errMsg
	entry.mu.Unlock()
	return nil
}
