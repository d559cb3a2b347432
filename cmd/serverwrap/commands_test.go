package serverwrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/serverwrap/pkg/config"
)

const quietConfig = `
run = []
restart = false
destinations = "destinations.toml"
cache_dir = "cache"

[status]
console = false

[tokens]
github = "ghp_supersecret"
`

func TestConfigInitCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration")

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultContent(), data)

	t.Run("existing file is kept", func(t *testing.T) {
		writeFile(t, dir, "config.toml", quietConfig)
		out, err := execute(t, dir, "config", "init")
		require.NoError(t, err)
		assert.Contains(t, out, "already exists")

		data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
		require.NoError(t, err)
		assert.Equal(t, quietConfig, string(data))
	})

	t.Run("force overwrites", func(t *testing.T) {
		_, err := execute(t, dir, "config", "init", "--force")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
		require.NoError(t, err)
		assert.Equal(t, config.DefaultContent(), data)
	})
}

func TestConfigShowCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.toml", quietConfig)

	tests := []struct {
		name     string
		args     []string
		contains []string
		absent   []string
	}{
		{
			name:     "toml masks secrets",
			args:     []string{"config", "show"},
			contains: []string{"min_restart_interval_seconds = 240", "restart = false"},
			absent:   []string{"ghp_supersecret"},
		},
		{
			name:     "yaml",
			args:     []string{"config", "show", "--format", "yaml"},
			contains: []string{"min_restart_interval_seconds: 240", "restart: false"},
			absent:   []string{"ghp_supersecret"},
		},
		{
			name:     "show secrets",
			args:     []string{"config", "show", "--show-secrets"},
			contains: []string{"ghp_supersecret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, dir, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, dir, "config", "show", "--format", "ini")
		assert.Error(t, err)
	})
}

func TestSyncCmdWithoutDestinations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.toml", quietConfig)

	out, err := execute(t, dir, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, MsgNoChanges)
	assert.FileExists(t, filepath.Join(dir, "destinations.toml"))
}

func TestCacheListCmdEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.toml", quietConfig)

	out, err := execute(t, dir, "cache", "list", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache is empty")
}

func TestRunCmdWithoutRestart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.toml", quietConfig)

	_, err := execute(t, dir, "run")
	require.NoError(t, err)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "custom.toml", quietConfig)

	out, err := execute(t, dir, "--config", "custom.toml", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "restart = false")
	assert.NoFileExists(t, filepath.Join(dir, "config.toml"))
}
