package serverwrap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/serverwrap/internal/version"
)

// execute runs the root command in dir and returns its stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"-C", dir}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestRootWithoutCommand(t *testing.T) {
	_, err := execute(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgErrNoCommand)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "serverwrap version "+version.Version)
	assert.Contains(t, out, "commit: "+version.Commit)
}

func TestInvalidOutputFlag(t *testing.T) {
	_, err := execute(t, t.TempDir(), "--output", "json", "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --output")
}

func TestCompletionCmd(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, t.TempDir(), "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "serverwrap")
		})
	}

	t.Run("unknown shell", func(t *testing.T) {
		_, err := execute(t, t.TempDir(), "completion", "tcsh")
		assert.Error(t, err)
	})
}
