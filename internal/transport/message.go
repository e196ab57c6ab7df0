// Package transport implements the two external surfaces described in spec
// §6: length-prefixed stdio "native messaging" framing, and an HTTP +
// WebSocket loopback. Both carry the same tagged message envelope; this
// file defines that shared shape.
//
// Grounded on the teacher's internal/api/server.go route table (REST
// handlers generalized into one dispatch path reused by all three
// surfaces) and internal/domain/registry/protocol.go's JSON-RPC aliases.
package transport

import (
	"encoding/json"

	"github.com/mcp-scooter/bridge/internal/rpc"
)

// Message is the tagged envelope shared by stdio frames and WebSocket text
// frames (spec §6).
type Message struct {
	Type string `json:"type"`

	// rpc / rpc_response
	ID     interface{}     `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result interface{}     `json:"result,omitempty"`
	Error  *rpc.Error      `json:"error,omitempty"`

	// stream
	Event *rpc.StreamEvent `json:"event,omitempty"`

	// status
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`

	// console
	ServerID string `json:"server_id,omitempty"`
	Level    string `json:"level,omitempty"`

	// host_request / host_response
	Context interface{} `json:"context,omitempty"`
}

const (
	TypePing         = "ping"
	TypeStatus       = "status"
	TypeShutdown     = "shutdown"
	TypeRPC          = "rpc"
	TypeRPCResponse  = "rpc_response"
	TypeStream       = "stream"
	TypeConsole      = "console"
	TypeHostRequest  = "host_request"
	TypeHostResponse = "host_response"
)
