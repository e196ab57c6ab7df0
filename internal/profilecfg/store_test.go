package profilecfg_test

import (
	"path/filepath"
	"testing"

	"github.com/mcp-scooter/bridge/internal/profilecfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := profilecfg.NewStore(filepath.Join(dir, "profiles.yaml"), filepath.Join(dir, "settings.yaml"))

	profiles := []profilecfg.Profile{
		{ID: "research", Env: map[string]string{"BRAVE_API_KEY": "k"}},
		{ID: "default"},
	}
	settings := profilecfg.DefaultSettings()
	settings.EnableBeta = true

	require.NoError(t, store.Save(profiles, settings))

	loadedProfiles, loadedSettings, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loadedProfiles, 2)
	assert.Equal(t, "research", loadedProfiles[0].ID)
	assert.Equal(t, "k", loadedProfiles[0].Env["BRAVE_API_KEY"])
	assert.True(t, loadedSettings.EnableBeta)
	assert.Equal(t, 8766, loadedSettings.BridgePort)
}

func TestStore_LoadNonExistentYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	store := profilecfg.NewStore(filepath.Join(dir, "missing-profiles.yaml"), filepath.Join(dir, "missing-settings.yaml"))

	profiles, settings, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.Equal(t, profilecfg.DefaultSettings(), settings)
}
