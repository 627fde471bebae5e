package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrLockUnavailable indicates the lock could not be acquired before the timeout
	ErrLockUnavailable = errors.New("lock unavailable")

	// ErrAlreadyHeld indicates Lock was called on an instance that already owns the lock
	ErrAlreadyHeld = errors.New("lock is already held by this instance")

	// ErrNotManaged indicates the target directory has not been initialized with dirlock
	ErrNotManaged = errors.New("not a dirlock-managed directory")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInterrupted indicates the user interrupted the command
	ErrInterrupted = errors.New("interrupted by the user")

	// ErrCommandFailed indicates the guarded command exited unsuccessfully
	ErrCommandFailed = errors.New("command failed")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error.
func Errorf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// Wrap wraps an error with a message for better context.
// Wrapping a nil error returns nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether target is in err's chain.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join combines errs into one error, skipping nil values.
// It returns nil when every error is nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// WithHint attaches a user-facing hint to err.
func WithHint(err error, hint string) error {
	return errors.WithHint(err, hint)
}

// GetAllHints returns every hint attached anywhere in err's chain.
func GetAllHints(err error) []string {
	return errors.GetAllHints(err)
}

// LockError represents an error that occurred when interacting with the lock file.
// It includes the lock file path, the owner's host and process ID if known,
// and the underlying error.
type LockError struct {
	LockFile string
	Host     string
	PID      int
	Err      error

	// Advisory replaces the generated message when set. It carries the fixed
	// text shown to users when the lock stays busy for the whole timeout.
	Advisory string
}

// Error implements the error interface with details about the lock file and owner.
func (e *LockError) Error() string {
	if e.Advisory != "" {
		return e.Advisory
	}
	if e.PID > 0 {
		owner := fmt.Sprintf("PID: %d", e.PID)
		if e.Host != "" {
			owner = fmt.Sprintf("%s on %s", owner, e.Host)
		}
		return fmt.Sprintf("lock error with file %s (%s): %v", e.LockFile, owner, e.Err)
	}
	return fmt.Sprintf("lock error with file %s: %v", e.LockFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(lockFile string, pid int, err error) *LockError {
	return &LockError{
		LockFile: lockFile,
		PID:      pid,
		Err:      err,
	}
}

// NewLockUnavailableError creates the LockError returned when acquisition
// timed out while another owner held the lock.
func NewLockUnavailableError(lockFile, host string, pid int, advisory string) *LockError {
	return &LockError{
		LockFile: lockFile,
		Host:     host,
		PID:      pid,
		Err:      ErrLockUnavailable,
		Advisory: advisory,
	}
}

// ConfigError represents an error in the application configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}

// CommandError represents a guarded command that could not be started or
// exited with a non-zero status.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Err      error
}

// Error implements the error interface with the command line and exit status.
func (e *CommandError) Error() string {
	line := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		return fmt.Sprintf("command %q exited with status %d: %v", line, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command %q failed: %v", line, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError with the given parameters.
func NewCommandError(command string, args []string, exitCode int, err error) *CommandError {
	return &CommandError{
		Command:  command,
		Args:     args,
		ExitCode: exitCode,
		Err:      err,
	}
}
