package tools

import "sync"

// ToolInfo is one tool's name/description/schema as advertised by the
// server that implements it.
type ToolInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema interface{} `json:"inputSchema,omitempty"`
}

// RegisteredTool is a ToolInfo bound to the server that registered it.
type RegisteredTool struct {
	ServerID    string      `json:"serverId"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema interface{} `json:"inputSchema,omitempty"`
}

// ToolRegistry is the bridge's directory of tools advertised by
// extension-side servers (WASM guests running in the browser extension
// itself, reached only through the poll/submit queue — never in-process).
// Those servers can't be introspected the way an in-process JS guest can,
// so they push their tool list here instead, letting GET /api/tools and
// mcp.list_tools report real names and schemas rather than bare server
// ids. The arbitrator does not consult this registry.
//
// Grounded on the original bridge's mcp::tool_registry (register_tools /
// unregister_tools / list_tools over a RwLock<HashMap<String,
// RegisteredTool>> keyed by "serverId/name"), dropped from this module's
// first pass along with the rest of the teacher's external-registry
// concept — restored here as the extension-advertisement mechanism the
// spec's tool arbitrator otherwise has no way to populate.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]RegisteredTool
}

// NewToolRegistry constructs an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]RegisteredTool)}
}

// Register adds or replaces every tool a server advertises, keyed by
// "serverId/name".
func (r *ToolRegistry) Register(serverID string, infos []ToolInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range infos {
		r.tools[serverID+"/"+t.Name] = RegisteredTool{
			ServerID:    serverID,
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}
	}
}

// Unregister removes every tool previously registered by serverID.
func (r *ToolRegistry) Unregister(serverID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.tools {
		if t.ServerID == serverID {
			delete(r.tools, key)
		}
	}
}

// List returns a snapshot of every registered tool.
func (r *ToolRegistry) List() []RegisteredTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RegisteredTool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}
