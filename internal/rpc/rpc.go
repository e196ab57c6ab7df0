// Package rpc implements the method dispatcher and the JSON-RPC-shaped
// error envelope shared by both transports (spec §6, §7).
//
// Grounded on the teacher's internal/api/mcp.go (JSONRPCRequest/Response/
// Error aliases and constructor helpers) and internal/domain/registry/
// protocol.go (error code constants), generalized from a fixed REST handler
// set to a method-name registry so that streaming methods are "treated via
// a registry check, not hard-coded branches" (spec §6).
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Error codes, spec §6/§7.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeDomainError    = -32000
	CodeProviderError  = -32001
)

// Request is one inbound `rpc` frame payload.
type Request struct {
	ID     interface{}     `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Error is the error envelope shared by both transports.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message) }

// Response is one `rpc_response` frame payload.
type Response struct {
	ID     interface{} `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// NewError constructs a domain error with the given code (spec §7 guest/
// registry/provider errors all flow through this).
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// StreamEvent is one event forwarded for a streaming method (spec §4.6).
type StreamEvent struct {
	ID           interface{} `json:"id"`
	EventType    string      `json:"event_type"`
	Token        string      `json:"token,omitempty"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Model        string      `json:"model,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// Handler answers a unary RPC method.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// StreamHandler answers a streaming RPC method by returning a channel of
// events; the dispatcher forwards them until the first "done" or "error"
// event, then the channel is expected to close.
type StreamHandler func(ctx context.Context, id interface{}, params json.RawMessage) (<-chan StreamEvent, error)

// Dispatcher routes method names to handlers. It is safe for concurrent
// registration and dispatch, though in practice all Register calls happen
// once at startup before Dispatch is ever called.
type Dispatcher struct {
	mu             sync.RWMutex
	handlers       map[string]Handler
	streamHandlers map[string]StreamHandler
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers:       make(map[string]Handler),
		streamHandlers: make(map[string]StreamHandler),
	}
}

// Register adds a unary method handler.
func (d *Dispatcher) Register(method string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[method] = h
}

// RegisterStream adds a streaming method handler.
func (d *Dispatcher) RegisterStream(method string, h StreamHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streamHandlers[method] = h
}

// IsStreaming reports whether method is registered as a streaming method —
// the registry check the dispatcher uses instead of hard-coding
// `if method == "llm.chat_stream"`.
func (d *Dispatcher) IsStreaming(method string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.streamHandlers[method]
	return ok
}

// Dispatch routes a unary request and always returns a Response (never an
// error) — dispatch failures become error envelopes, not Go errors (spec
// §7: "dispatch errors become error envelopes").
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	d.mu.RLock()
	h, ok := d.handlers[req.Method]
	_, isStream := d.streamHandlers[req.Method]
	d.mu.RUnlock()

	if isStream {
		return Response{ID: req.ID, Error: NewError(CodeInvalidRequest, "method is a streaming method, use the streaming entry point")}
	}
	if !ok {
		return Response{ID: req.ID, Error: NewError(CodeMethodNotFound, "method not found: "+req.Method)}
	}

	result, err := h(ctx, req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: toEnvelope(err)}
	}
	return Response{ID: req.ID, Result: result}
}

// DispatchStream routes a streaming request.
func (d *Dispatcher) DispatchStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	d.mu.RLock()
	h, ok := d.streamHandlers[req.Method]
	d.mu.RUnlock()
	if !ok {
		return nil, NewError(CodeMethodNotFound, "method not found: "+req.Method)
	}
	return h(ctx, req.ID, req.Params)
}

func toEnvelope(err error) *Error {
	var coded *Error
	if errors.As(err, &coded) {
		return coded
	}
	return NewError(CodeInternalError, err.Error())
}
