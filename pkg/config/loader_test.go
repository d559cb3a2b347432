// pkg/config/loader_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test config loading, default creation, env overrides and validation

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/config"
	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"java -jar fabric-server-launch.jar"}, cfg.Run)
	assert.True(t, cfg.Restart)
	assert.Equal(t, uint64(240), cfg.MinRestartIntervalSeconds)
	assert.Equal(t, 240*time.Second, cfg.MinRestartInterval())
	assert.Equal(t, "destinations.toml", cfg.Destinations)
	assert.Equal(t, "wrapper_cache", cfg.CacheDir)
	assert.Equal(t, 1, cfg.SourceConcurrency)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout.Std())
	assert.Empty(t, cfg.Status.Webhook)
	assert.True(t, cfg.Status.Console)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultContent(), written)
}

func TestLoadMergesUserValuesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
run = ["./prepare.sh", "java -Xmx4G -jar server.jar nogui"]
min_restart_interval_seconds = 30
http_timeout = "5s"

[status]
webhook = "https://discord.com/api/webhooks/1/abc"

[tokens]
github = "ghp_secret"

[triggers.boot]
type = "startup"

[triggers.deploy]
type = "webhook"
port = 8080
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"./prepare.sh", "java -Xmx4G -jar server.jar nogui"}, cfg.Run)
	assert.Equal(t, 30*time.Second, cfg.MinRestartInterval())
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout.Std())
	assert.True(t, cfg.Restart, "unset keys keep their defaults")
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.Status.Webhook)
	assert.Equal(t, "ghp_secret", cfg.Tokens.GitHub)
	assert.Equal(t, config.Trigger{Type: "webhook", Port: 8080}, cfg.Triggers["deploy"])
	assert.Equal(t, config.Trigger{Type: "startup"}, cfg.Triggers["boot"])
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `restart = true`)

	t.Setenv("SERVERWRAP_RESTART", "false")
	t.Setenv("SERVERWRAP_TOKENS__GITHUB", "from-env")
	t.Setenv("SERVERWRAP_MIN_RESTART_INTERVAL_SECONDS", "10")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Restart)
	assert.Equal(t, "from-env", cfg.Tokens.GitHub)
	assert.Equal(t, uint64(10), cfg.MinRestartIntervalSeconds)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode errors.ErrorCode
	}{
		{"malformed_toml", "run = [", errors.ErrConfigParse},
		{"wrong_type", `http_timeout = "soon"`, errors.ErrConfigParse},
		{"bad_webhook", "[status]\nwebhook = \"ftp://example.com\"", errors.ErrConfigInvalid},
		{"unknown_trigger", "[triggers.x]\ntype = \"cron\"", errors.ErrConfigInvalid},
		{"webhook_without_port", "[triggers.x]\ntype = \"webhook\"", errors.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, path, tt.content)

			_, err := config.Load(path)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(err))
		})
	}
}

func TestValidateNormalizesConcurrency(t *testing.T) {
	cfg := config.Default()
	cfg.SourceConcurrency = 0

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.SourceConcurrency)
}

func TestTriggerTypes(t *testing.T) {
	assert.Equal(t, []string{"startup", "webhook"}, config.TriggerTypes())
}
