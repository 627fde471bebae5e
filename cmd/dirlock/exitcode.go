package main

import (
	"context"

	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/runner"
)

// Process exit codes. A failed guarded command exits with its own code.
const (
	ExitOK              = 0
	ExitLockUnavailable = 250
	ExitConfigError     = 251
	ExitInterrupted     = 252
	ExitNotManaged      = 253
	ExitUsageError      = 254
	ExitUnexpected      = 255
)

// usageError marks command-line parse errors: unknown commands or flags,
// bad flag values and wrong argument counts.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, errors.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var cmdErr *errors.CommandError
	if errors.As(err, &cmdErr) && errors.Is(err, errors.ErrCommandFailed) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}

	switch {
	case errors.Is(err, errors.ErrLockUnavailable):
		return ExitLockUnavailable
	case errors.Is(err, errors.ErrNotManaged):
		return ExitNotManaged
	case errors.Is(err, errors.ErrInvalidConfiguration):
		return ExitConfigError
	default:
		return ExitUnexpected
	}
}

// isCommandFailure reports whether err only carries the guarded command's
// own failure, which the command already reported on its stderr.
func isCommandFailure(err error) bool {
	var cmdErr *errors.CommandError
	return errors.As(err, &cmdErr) && errors.Is(err, errors.ErrCommandFailed) &&
		cmdErr.ExitCode > 0 && cmdErr.ExitCode != runner.ExitCodeNotFound
}
