package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/bashhack/dirlock/internal/errors"
)

// ExitCodeNotFound is reported when the command could not be started at all,
// matching the convention of POSIX shells.
const ExitCodeNotFound = 127

// interruptGrace is how long a canceled command gets to exit after the
// interrupt before it is killed.
const interruptGrace = 5 * time.Second

// Command describes one guarded command invocation.
type Command struct {
	Dir    string
	Name   string
	Args   []string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Executor defines an interface for running guarded commands
type Executor interface {
	// Run executes cmd and waits for it. A non-zero exit is reported as a
	// *errors.CommandError carrying the exit code.
	Run(ctx context.Context, cmd Command) error
}

// ExecExecutor is the default implementation of Executor
// that delegates to the os/exec package
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Run implements Executor.Run. When ctx is canceled the child receives an
// interrupt and is killed if it is still running after a grace period.
func (e *ExecExecutor) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = interruptGrace

	err := c.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Terminated by a signal
			code = 128 + signalOf(exitErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.NewCommandError(cmd.Name, cmd.Args, code,
				errors.Wrap(ctxErr, err.Error()))
		}
		return errors.NewCommandError(cmd.Name, cmd.Args, code,
			errors.Wrap(errors.ErrCommandFailed, err.Error()))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.NewCommandError(cmd.Name, cmd.Args, 0, ctxErr)
	}
	return errors.NewCommandError(cmd.Name, cmd.Args, ExitCodeNotFound,
		errors.Wrap(errors.ErrCommandFailed, err.Error()))
}

func signalOf(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return int(status.Signal())
	}
	return 0
}
