package bridgeclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcp-scooter/bridge/internal/bridgeclient"
)

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "system.health", req["method"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"result":{"status":"ok"}}`))
	}))
	defer srv.Close()

	c := bridgeclient.New(srv.URL, 0)
	assert.NoError(t, c.Health())
}

func TestClient_CallTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mcp.call_tool", req["method"])
		params := req["params"].(map[string]interface{})
		assert.Equal(t, "search", params["serverId"])
		assert.Equal(t, "web_search", params["toolName"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"result":{"content":[{"type":"text","text":"hi"}]}}`))
	}))
	defer srv.Close()

	c := bridgeclient.New(srv.URL, 0)
	result, err := c.CallTool("search", "web_search", map[string]interface{}{"q": "go"})
	require.NoError(t, err)
	assert.NotNil(t, result["content"])
}

func TestClient_ErrorEnvelopeIsReturnedAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"error":{"code":-32000,"message":"guest not found"}}`))
	}))
	defer srv.Close()

	c := bridgeclient.New(srv.URL, 0)
	err := c.StopServer("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guest not found")
}
