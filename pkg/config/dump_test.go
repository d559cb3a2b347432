package config_test

import (
	"testing"

	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	cfg := config.Default()
	cfg.Tokens.GitHub = "ghp_secret"
	cfg.Status.Webhook = "https://discord.com/api/webhooks/1/token"

	t.Run("toml_masks_secrets", func(t *testing.T) {
		out, err := config.Marshal(cfg, "toml", false)
		require.NoError(t, err)
		assert.Contains(t, string(out), "min_restart_interval_seconds = 240")
		assert.Contains(t, string(out), "1m0s")
		assert.NotContains(t, string(out), "ghp_secret")
		assert.Contains(t, string(out), "https://discord.com/********")
	})

	t.Run("yaml_with_secrets", func(t *testing.T) {
		out, err := config.Marshal(cfg, "yaml", true)
		require.NoError(t, err)
		assert.Contains(t, string(out), "github: ghp_secret")
		assert.Contains(t, string(out), "restart: true")
	})

	t.Run("unknown_format", func(t *testing.T) {
		_, err := config.Marshal(cfg, "ini", false)
		assert.Error(t, err)
	})
}
