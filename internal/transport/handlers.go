package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcp-scooter/bridge/internal/guest"
	"github.com/mcp-scooter/bridge/internal/hostrpc"
	"github.com/mcp-scooter/bridge/internal/llm"
	"github.com/mcp-scooter/bridge/internal/pump"
	"github.com/mcp-scooter/bridge/internal/rpc"
	"github.com/mcp-scooter/bridge/internal/stream"
	"github.com/mcp-scooter/bridge/internal/tools"
)

// GuestRegistry is the subset of internal/registry.Registry the dispatcher
// needs.
type GuestRegistry interface {
	StartWithRuntime(id, code string, env map[string]string, caps guest.Capabilities, runtime string) error
	Call(id, payload string, hostRouter pump.HostRouter) (string, error)
	Stop(id string) error
	List() []string
}

// BuildDispatcher wires the guest registry, tool arbitrator, and streaming
// forwarder into one method-name dispatch table. A fresh dispatcher is
// built per connection because router scopes host round-trips to the
// connection that can actually carry a host_request/host_response pair
// (spec §4.4: "If no outward channel is attached ... inject an error" — an
// HTTP /rpc call's router has no FrameIO behind it, so its sends fail).
func BuildDispatcher(reg GuestRegistry, arb *tools.Arbitrator, forwarder *stream.Forwarder, router *hostrpc.Router, toolReg *tools.ToolRegistry) *rpc.Dispatcher {
	d := rpc.NewDispatcher()

	d.Register("system.health", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return map[string]interface{}{"status": "ok"}, nil
	})

	d.Register("js.start_server", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			ID           string             `json:"id"`
			Code         string             `json:"code"`
			Env          map[string]string  `json:"env"`
			Capabilities guest.Capabilities `json:"capabilities"`
			Runtime      string             `json:"runtime"` // "js" (default) or "wasm", spec §4.9
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
		}
		if err := reg.StartWithRuntime(req.ID, req.Code, req.Env, req.Capabilities, req.Runtime); err != nil {
			return nil, rpc.NewError(rpc.CodeDomainError, err.Error())
		}
		return map[string]interface{}{"id": req.ID}, nil
	})

	d.Register("js.call", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			ID      string          `json:"id"`
			Request json.RawMessage `json:"request"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
		}
		var hr pump.HostRouter
		if router != nil {
			hr = router.For(req.ID)
		}
		out, err := reg.Call(req.ID, string(req.Request), hr)
		if err != nil {
			return nil, rpc.NewError(rpc.CodeDomainError, err.Error())
		}
		var result interface{}
		if jsonErr := json.Unmarshal([]byte(out), &result); jsonErr != nil {
			return nil, rpc.NewError(rpc.CodeInternalError, fmt.Sprintf("guest reply was not valid json: %v", jsonErr))
		}
		return result, nil
	})

	d.Register("js.stop", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
		}
		if err := reg.Stop(req.ID); err != nil {
			return nil, rpc.NewError(rpc.CodeDomainError, err.Error())
		}
		return map[string]interface{}{"stopped": req.ID}, nil
	})

	d.Register("js.list", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return map[string]interface{}{"ids": reg.List()}, nil
	})

	d.Register("mcp.call_tool", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var p tools.Params
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
		}
		return arb.CallTool(ctx, p)
	})

	d.Register("mcp.poll_pending_calls", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return map[string]interface{}{"calls": arb.PollPendingCalls()}, nil
	})

	d.Register("mcp.submit_call_result", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			ID     string                 `json:"id"`
			Result map[string]interface{} `json:"result"`
			Error  string                 `json:"error"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
		}
		if err := arb.SubmitCallResult(req.ID, req.Result, req.Error); err != nil {
			return nil, rpc.NewError(rpc.CodeDomainError, err.Error())
		}
		return map[string]interface{}{"ok": true}, nil
	})

	// mcp.register_tools/unregister_tools/list_tools let an extension-side
	// server (a WASM guest running in the browser extension, reachable
	// only through the poll/submit queue) advertise its tool names and
	// schemas to the bridge, since the bridge can't introspect it directly
	// the way it can an in-process JS guest (spec §4.8, grounded on the
	// original bridge's mcp::register_tools/unregister_tools/list_tools).
	d.Register("mcp.register_tools", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			ServerID string           `json:"serverId"`
			Tools    []tools.ToolInfo `json:"tools"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
		}
		toolReg.Register(req.ServerID, req.Tools)
		return map[string]interface{}{"ok": true}, nil
	})

	d.Register("mcp.unregister_tools", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req struct {
			ServerID string `json:"serverId"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
		}
		toolReg.Unregister(req.ServerID)
		return map[string]interface{}{"ok": true}, nil
	})

	d.Register("mcp.list_tools", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return map[string]interface{}{"tools": toolReg.List()}, nil
	})

	if forwarder != nil {
		d.RegisterStream("llm.chat_stream", func(ctx context.Context, id interface{}, params json.RawMessage) (<-chan rpc.StreamEvent, error) {
			var req llm.ChatRequest
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, rpc.NewError(rpc.CodeInvalidParams, err.Error())
			}
			return forwarder.ChatStream(ctx, id, req)
		})
	}

	return d
}
