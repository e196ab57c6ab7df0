package wasmtool_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcp-scooter/bridge/internal/wasmtool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingModuleFileFails(t *testing.T) {
	_, err := wasmtool.New(context.Background(), "missing", filepath.Join(t.TempDir(), "nope.wasm"), nil, wasmtool.Config{})
	require.Error(t, err)
}

func TestNew_InvalidWasmBytesFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wasm")
	require.NoError(t, os.WriteFile(path, []byte("not a wasm module"), 0o644))

	_, err := wasmtool.New(context.Background(), "bad", path, nil, wasmtool.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile module")
}
