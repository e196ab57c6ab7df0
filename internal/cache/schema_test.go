package cache_test

import (
	"testing"

	"github.com/mcp-scooter/bridge/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCache_SetAndGet(t *testing.T) {
	c := cache.NewSchemaCache(t.TempDir())

	schema := &cache.JSONSchema{
		Type:     "object",
		Required: []string{"query"},
		Properties: map[string]cache.PropertySchema{
			"query": {Type: "string", Description: "search query"},
		},
	}

	require.NoError(t, c.Set("ext/search", "web_search", schema))

	got, ok := c.Get("ext/search", "web_search")
	require.True(t, ok)
	assert.Equal(t, "object", got.Type)
	assert.Equal(t, []string{"query"}, got.Required)
	assert.Equal(t, "search query", got.Properties["query"].Description)
}

func TestSchemaCache_GetMissReturnsFalse(t *testing.T) {
	c := cache.NewSchemaCache(t.TempDir())
	_, ok := c.Get("ext/search", "nope")
	assert.False(t, ok)
}
