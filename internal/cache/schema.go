// Package cache caches tool input/output JSON schemas on disk so the CLI
// doesn't have to round-trip to the daemon (and from there to a guest or
// the extension-side queue) just to render a tool's argument form.
//
// Adapted nearly as-is from the teacher's internal/cli/cache.SchemaCache —
// the one-file-per-tool layout under serverID/toolName.json is already
// domain-generic. Only the schema type changes: the teacher's
// registry.JSONSchema described an external MCP server's advertised
// schema; here it's keyed by the (serverId, toolName) pair the arbitrator's
// tools.Params already uses, so a schema cached for a mcp.call_tool target
// can be looked up with the same identifiers.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// PropertySchema describes one property of a JSONSchema.
type PropertySchema struct {
	Type        string          `json:"type,omitempty"`
	Description string          `json:"description,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Items       *PropertySchema `json:"items,omitempty"`
}

// JSONSchema is a minimal JSON Schema representation sufficient to render
// a tool's argument form.
type JSONSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

// SchemaCache is a directory-backed cache of tool schemas, one file per
// (serverID, toolName) pair.
type SchemaCache struct {
	dir string
}

// NewSchemaCache constructs a cache rooted at dir.
func NewSchemaCache(dir string) *SchemaCache {
	return &SchemaCache{dir: dir}
}

// Get returns the cached schema for serverID/toolName, if any.
func (c *SchemaCache) Get(serverID, toolName string) (*JSONSchema, bool) {
	path := filepath.Join(c.dir, serverID, toolName+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var schema JSONSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, false
	}
	return &schema, true
}

// Set writes schema for serverID/toolName, creating the server's directory
// if needed.
func (c *SchemaCache) Set(serverID, toolName string, schema *JSONSchema) error {
	dir := filepath.Join(c.dir, serverID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, toolName+".json"), data, 0o644)
}
