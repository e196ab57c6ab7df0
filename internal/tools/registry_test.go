package tools_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-scooter/bridge/internal/tools"
)

func TestToolRegistry_RegisterAndList(t *testing.T) {
	r := tools.NewToolRegistry()
	r.Register("search", []tools.ToolInfo{
		{Name: "web_search", Description: "search the web"},
		{Name: "fetch_page"},
	})

	list := r.List()
	require.Len(t, list, 2)

	byName := map[string]tools.RegisteredTool{}
	for _, t := range list {
		byName[t.Name] = t
	}
	assert.Equal(t, "search", byName["web_search"].ServerID)
	assert.Equal(t, "search the web", byName["web_search"].Description)
}

func TestToolRegistry_RegisterReplacesExisting(t *testing.T) {
	r := tools.NewToolRegistry()
	r.Register("search", []tools.ToolInfo{{Name: "web_search", Description: "v1"}})
	r.Register("search", []tools.ToolInfo{{Name: "web_search", Description: "v2"}})

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "v2", list[0].Description)
}

func TestToolRegistry_UnregisterRemovesOnlyThatServer(t *testing.T) {
	r := tools.NewToolRegistry()
	r.Register("search", []tools.ToolInfo{{Name: "web_search"}})
	r.Register("files", []tools.ToolInfo{{Name: "read_file"}})

	r.Unregister("search")

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "files", list[0].ServerID)
}
