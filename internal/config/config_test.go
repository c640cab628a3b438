package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 0, cfg.MaxPasses, "0 means let the resolver derive its own pass bound")
	assert.Equal(t, ".arpha/cache.db", cfg.CachePath)
	assert.False(t, cfg.IsTestMode)
}

// TestLoad_MissingFileFallsBackToDefault mirrors funvibe/funxy's lenient
// project-config loading: a project with no arpha.yaml still compiles,
// using Default()'s values rather than failing.
func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arpha.yaml")
	yaml := `
module: example.com/widget
entry: main.arp
maxPasses: 12
cachePath: .widget/cache.db
rpcServices:
  pricing: localhost:9000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "example.com/widget", cfg.Module)
	assert.Equal(t, "main.arp", cfg.EntryPoint)
	assert.Equal(t, 12, cfg.MaxPasses)
	assert.Equal(t, ".widget/cache.db", cfg.CachePath)
	assert.Equal(t, "localhost:9000", cfg.RPCServices["pricing"])
}

func TestLoad_MalformedYAMLReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arpha.yaml")
	require.NoError(t, os.WriteFile(path, []byte("module: [unterminated"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
