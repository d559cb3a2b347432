package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default info level", 0, zerolog.InfoLevel},
		{"debug level", 1, zerolog.DebugLevel},
		{"trace level", 2, zerolog.TraceLevel},
		{"high verbosity stays at trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
			_, err := os.Stat(filepath.Join(tempDir, "serverwrap", "serverwrap.log"))
			assert.NoError(t, err, "log file should be created")
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("with XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "/custom/state")
		assert.Equal(t, filepath.Join("/custom/state", "serverwrap", "serverwrap.log"), getLogFilePath())
	})

	t.Run("without XDG_STATE_HOME", func(t *testing.T) {
		t.Setenv("XDG_STATE_HOME", "")
		got := getLogFilePath()
		assert.True(t, filepath.IsAbs(got))
		assert.Contains(t, filepath.ToSlash(got), ".local/state/serverwrap/serverwrap.log")
	})
}

func TestGetLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	t.Cleanup(func() { log.Logger = orig })
	log.Logger = zerolog.New(&buf)

	logger := GetLogger("cache")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"cache"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	t.Cleanup(func() { log.Logger = orig })
	log.Logger = zerolog.New(&buf)

	logger := WithFields(map[string]interface{}{"destination": "mods", "count": 3})
	logger.Info().Msg("x")

	assert.Contains(t, buf.String(), `"destination":"mods"`)
	assert.Contains(t, buf.String(), `"count":3`)
}

func TestLogCommand(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	origLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = orig
		zerolog.SetGlobalLevel(origLevel)
	})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)

	LogCommand("java", []string{"-jar", "server.jar"})

	out := buf.String()
	assert.Contains(t, out, "java")
	assert.Contains(t, out, "server.jar")
	assert.Contains(t, out, "Executing command")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	origLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(origLevel) })
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "prepare")
	done()

	out := buf.String()
	require.Contains(t, out, "Operation started")
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, "duration")
}

func TestMustNoError(t *testing.T) {
	assert.NotPanics(t, func() { Must(nil, "unused") })
}
