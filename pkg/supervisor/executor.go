package supervisor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
)

// Executor runs the supervised workload once.
type Executor interface {
	Run(ctx context.Context) error
}

// CommandExecutor runs shell-style command lines in order.
type CommandExecutor struct {
	Commands []string
	// Dir is the working directory; empty means the current one.
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommandExecutor runs commands with the launcher's stdio.
func NewCommandExecutor(commands []string) *CommandExecutor {
	return &CommandExecutor{
		Commands: commands,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Run executes each command and stops at the first failure. Cancelling ctx
// kills the running command.
func (e *CommandExecutor) Run(ctx context.Context) error {
	logger := logging.GetLogger("supervisor")

	for _, line := range e.Commands {
		if strings.TrimSpace(line) == "" {
			continue
		}
		argv, err := shlex.Split(line)
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid, "cannot parse command %q", line)
		}
		if len(argv) == 0 {
			continue
		}

		logging.LogCommand(argv[0], argv[1:])
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = e.Dir
		cmd.Stdin = e.Stdin
		cmd.Stdout = e.Stdout
		cmd.Stderr = e.Stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(err, errors.ErrProcess, "command failed: %s", argv[0]).
				WithDetail("command", line)
		}
		logger.Debug().Str("command", argv[0]).Msg("Command exited")
	}
	return nil
}
