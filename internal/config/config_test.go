package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcp-scooter/bridge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.json")
	store := config.New(path)

	cfg := config.Config{
		DefaultModel:    "openai:gpt-4o",
		DefaultProvider: "openai",
		Providers: []config.ProviderInstance{
			{ID: "openai", Type: "openai", Enabled: true, APIKey: "sk-test"},
		},
		Models: []config.ModelEntry{
			{ID: "openai:gpt-4o", ProviderID: "openai"},
		},
	}

	require.NoError(t, store.Save(cfg))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, config.CurrentVersion, loaded.Version)
	assert.Equal(t, "openai:gpt-4o", loaded.DefaultModel)
	assert.Equal(t, "openai", loaded.DefaultProvider)
	require.Len(t, loaded.Providers, 1)
	assert.Equal(t, "sk-test", loaded.Providers[0].APIKey)
}

func TestStore_LoadNonExistentYieldsEmptyV2(t *testing.T) {
	store := config.New(filepath.Join(t.TempDir(), "missing.json"))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, config.CurrentVersion, loaded.Version)
	assert.Empty(t, loaded.Providers)
}

func TestStore_LoadV1Migrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.json")
	v1 := `{
		"default_model": "openai:gpt-4o",
		"providers": {
			"openai": {"enabled": true, "api_key": "sk-legacy", "base_url": "https://api.openai.com/v1"},
			"anthropic": {"enabled": false}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(v1), 0o644))

	store := config.New(path)
	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, config.CurrentVersion, loaded.Version)
	assert.Equal(t, "openai:gpt-4o", loaded.DefaultModel)
	assert.Equal(t, "openai", loaded.DefaultProvider)
	require.Len(t, loaded.Providers, 2)

	byID := map[string]config.ProviderInstance{}
	for _, p := range loaded.Providers {
		byID[p.ID] = p
	}
	assert.Equal(t, "openai", byID["openai"].Type)
	assert.True(t, byID["openai"].IsTypeDefault)
	assert.Equal(t, "sk-legacy", byID["openai"].APIKey)
	assert.True(t, byID["anthropic"].IsTypeDefault)
	assert.False(t, byID["anthropic"].Enabled)
}

func TestStore_LoadV1WithNoDefaultModelLeavesDefaultProviderEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"providers":{"openai":{"enabled":true}}}`), 0o644))

	store := config.New(path)
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.DefaultProvider)
}

func TestStore_LoadV1DefaultModelWithUnknownProviderLeavesDefaultProviderEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.json")
	v1 := `{
		"default_model": "ollama:llama3.2",
		"providers": {
			"openai": {"enabled": true}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(v1), 0o644))

	store := config.New(path)
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.DefaultProvider)
}

func TestDefaultPath_HonorsOverrideEnv(t *testing.T) {
	t.Setenv("SCOOTER_BRIDGE_CONFIG_DIR", "/tmp/harbor-override")
	path, err := config.DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/harbor-override", "llm.json"), path)
}
