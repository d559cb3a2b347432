//go:build !windows

package supervisor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/serverwrap/pkg/errors"
)

func newTestExecutor(commands ...string) (*CommandExecutor, *bytes.Buffer) {
	var out bytes.Buffer
	return &CommandExecutor{Commands: commands, Stdout: &out, Stderr: &out}, &out
}

func TestCommandExecutorRunsInOrder(t *testing.T) {
	exec, out := newTestExecutor(`echo "first line"`, "", "echo second")

	require.NoError(t, exec.Run(context.Background()))
	assert.Equal(t, "first line\nsecond\n", out.String())
}

func TestCommandExecutorStopsAtFirstFailure(t *testing.T) {
	exec, out := newTestExecutor("echo one", "false", "echo never")

	err := exec.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProcess))
	assert.Equal(t, "one\n", out.String())
}

func TestCommandExecutorMissingBinary(t *testing.T) {
	exec, _ := newTestExecutor("serverwrap-no-such-binary --flag")

	err := exec.Run(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrProcess))
}

func TestCommandExecutorUnbalancedQuotes(t *testing.T) {
	exec, _ := newTestExecutor(`echo "unterminated`)

	err := exec.Run(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestCommandExecutorNoCommands(t *testing.T) {
	exec, _ := newTestExecutor()
	assert.NoError(t, exec.Run(context.Background()))
}

func TestCommandExecutorCancel(t *testing.T) {
	exec, _ := newTestExecutor("sleep 30")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := exec.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
