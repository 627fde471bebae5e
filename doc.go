// Package dirlock serializes commands that operate on the same directory
//
// dirlock keeps independent processes from working on one directory at the
// same time. Each process takes an exclusive lock stored inside the
// directory before it runs its command and releases it afterwards. A process
// that finds the lock taken waits for it, and gives up with an advisory
// message when the wait times out. Locks abandoned by crashed processes are
// reclaimed automatically once they are older than the configured lifetime.
//
// # Quick Start
//
//	# Start managing a directory
//	cd /path/to/project
//	dirlock init
//
//	# Run a command while holding the lock
//	dirlock run -- make build
//
//	# See who holds the lock
//	dirlock status
//
// # Module Structure
//
// The module is organized into these packages:
//
//   - cmd/dirlock: Command-line interface and exit codes
//   - internal/lock: Lock protocol, retry scheduler and the Lock facade
//   - internal/runner: Running the guarded command and user prompts
//   - internal/config: Flags, environment and config file handling
//   - internal/metrics: Prometheus counters for lock activity
//   - internal/logger: Logging facilities
//   - internal/errors: Error handling utilities
//   - internal/constants: On-disk layout and fixed strings
//
// # Common Configuration Options
//
//	# Wait up to 30 seconds for a busy lock
//	dirlock run --timeout 30s -- ./deploy.sh
//
//	# Consider locks older than a day abandoned
//	dirlock run --lifetime 24h -- make release
//
//	# The same settings from the environment
//	DIRLOCK_TIMEOUT=30s DIRLOCK_LIFETIME=24h dirlock run -- make release
//
// Settings can also be stored in .dirlock/config.yaml inside the managed
// directory. Flags override the environment, which overrides the file.
//
// # Recovering a Lock
//
// When a holder dies without releasing its lock, the next process that finds
// the lock older than --lifetime removes it and proceeds. A younger lock can
// be removed by hand once its owner is known to be gone:
//
//	dirlock status
//	dirlock unlock --force
//
// # Exit Codes
//
//   - 0: success
//   - 250: the lock stayed busy for the whole timeout
//   - 251: invalid configuration
//   - 252: interrupted by the user
//   - 253: the directory is not managed by dirlock
//   - 254: invalid command line
//   - 255: unexpected error
//
// A command run through `dirlock run` that fails makes dirlock exit with the
// command's own exit code.
//
// # Platform Support
//
// dirlock relies on hard links and atomic renames and works on any local or
// network filesystem that provides them, on Linux, macOS and Windows.
//
// # Implementation Notes
//
// The lock is a hard link from the lock path to a per-process claim file
// holding the owner's host, PID and a random nonce. Creating the link either
// succeeds or fails atomically, so exactly one process wins. Removing an
// expired lock happens under a short advisory guard lock so two processes
// never remove each other's fresh lock.
//
// The application handles signals (such as SIGINT, SIGTERM, and SIGHUP) to
// stop the guarded command and release the lock even when terminated
// unexpectedly.
package dirlock
