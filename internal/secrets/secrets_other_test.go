//go:build !windows

package secrets_test

import (
	"path/filepath"
	"testing"

	"github.com/mcp-scooter/bridge/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) secrets.Store {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return secrets.NewStore("bridge-test")
}

func TestFileStore_SetGetRemove(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("openai")
	assert.ErrorIs(t, err, secrets.ErrNotFound)

	require.NoError(t, store.Set("openai", "sk-test"))
	v, err := store.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", v)

	require.NoError(t, store.Remove("openai"))
	_, err = store.Get("openai")
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	first := secrets.NewStore("bridge-test")
	require.NoError(t, first.Set("anthropic", "sk-anthropic"))

	second := secrets.NewStore("bridge-test")
	v, err := second.Get("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "sk-anthropic", v)

	assert.FileExists(t, filepath.Join(dir, "harbor", "bridge-test-secrets.json"))
}
