package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, uint64(32*1024*1024), cfg.Memory.SizeBytes)
	assert.Equal(t, uint64(10_000_000), cfg.Execution.MaxCycles)
	assert.Equal(t, "0x0400", cfg.Execution.EntryPoint)
	assert.True(t, cfg.Debugger.ShowRegisters)
	assert.Equal(t, "hex", cfg.Display.NumberFormat)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acca.toml")
	contents := "[memory]\nsize_bytes = 1048576\n\n[execution]\nentry_point = \"0x1000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(1048576), cfg.Memory.SizeBytes)
	assert.Equal(t, "0x1000", cfg.Execution.EntryPoint)
	// untouched sections keep their defaults
	assert.Equal(t, uint64(10_000_000), cfg.Execution.MaxCycles)
	assert.True(t, cfg.Display.ColorOutput)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
