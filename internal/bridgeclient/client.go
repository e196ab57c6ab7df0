// Package bridgeclient is the scooter-cli's view of the daemon: a thin
// JSON-RPC-over-HTTP client POSTing to the bridge's /rpc route.
//
// Adapted from the teacher's internal/cli/client.ControlClient, which spoke
// a REST API (one endpoint per verb: /api/tools/call, /api/status, ...).
// The bridge has a single JSON-RPC surface instead (spec §6), so every
// operation here is a Call() through one method name rather than its own
// endpoint, but the client shape — one small struct wrapping
// *http.Client and a base URL, with one POST helper (Call) — is kept.
package bridgeclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks JSON-RPC to one bridge daemon's HTTP loopback.
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs a Client. timeout of 0 selects 30s, matching the
// teacher's ControlClient default request budget.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	Type   string      `json:"type"`
	ID     int         `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("bridge error %d: %s", e.Code, e.Message) }

// Call invokes method with params and decodes the result into out (a
// pointer, or nil to discard it).
func (c *Client) Call(method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{Type: "rpc", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	resp, err := c.http.Post(c.baseURL+"/rpc", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var env rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	if env.Error != nil {
		return env.Error
	}
	if out != nil && len(env.Result) > 0 {
		return json.Unmarshal(env.Result, out)
	}
	return nil
}

// Health calls system.health.
func (c *Client) Health() error {
	return c.Call("system.health", nil, nil)
}

// StartServerParams mirrors js.start_server's request shape.
type StartServerParams struct {
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Env          map[string]string `json:"env,omitempty"`
	Runtime      string            `json:"runtime,omitempty"`
	Capabilities interface{}       `json:"capabilities,omitempty"`
}

// StartServer calls js.start_server.
func (c *Client) StartServer(p StartServerParams) error {
	return c.Call("js.start_server", p, nil)
}

// StopServer calls js.stop.
func (c *Client) StopServer(id string) error {
	return c.Call("js.stop", map[string]string{"id": id}, nil)
}

// ListServers calls js.list.
func (c *Client) ListServers() ([]string, error) {
	var out struct {
		IDs []string `json:"ids"`
	}
	if err := c.Call("js.list", nil, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

// CallTool calls mcp.call_tool.
func (c *Client) CallTool(serverID, toolName string, args map[string]interface{}) (map[string]interface{}, error) {
	var out map[string]interface{}
	params := map[string]interface{}{
		"serverId": serverID,
		"toolName": toolName,
		"args":     args,
	}
	if err := c.Call("mcp.call_tool", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}
