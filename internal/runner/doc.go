// Package runner executes the command guarded by the lock and asks the user
// for confirmation when an action needs it.
//
// # Core Components
//
// - Executor: interface for running a command in the locked directory
// - ExecExecutor: os/exec based implementation
// - Interactor: yes/no prompts, with a non-interactive variant for scripts
//
// # Exit Codes
//
// A command that exits unsuccessfully is reported as *errors.CommandError
// with its exit code, so the CLI can exit with the same code. A command that
// cannot be started reports ExitCodeNotFound (127); one killed by a signal
// reports 128 plus the signal number.
//
// # Cancellation
//
// When the context is canceled the child receives an interrupt and gets a
// short grace period to exit before it is killed.
package runner
