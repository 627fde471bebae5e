// Package logger provides logging facilities for the dirlock application.
//
// Diagnostics are written through charmbracelet/log: to stderr, filtered by
// the console level, and, when file logging is enabled, to a logfmt file that
// records every message regardless of verbosity. Messages meant for the user
// go to stdout with a short emoji prefix.
//
// # Core Components
//
// - Logger: The main interface for logging used throughout the application
// - DefaultLogger: Standard implementation backed by charmbracelet/log
// - Default/SetDefault: The process-wide logger used by the CLI
//
// # Log Levels
//
// The console level decides what reaches stderr:
//
//	DebugLevel   everything, enabled by --verbose
//	InfoLevel    informational diagnostics
//	WarnLevel    warnings only (default)
//	ErrorLevel   errors only, enabled by --quiet; also hides user messages
//
// Error is always shown to the user.
//
// # Scoped Verbosity
//
// A command changes the verbosity for its own duration only:
//
//	restore := log.PushLevel(logger.DebugLevel)
//	defer restore()
//
// The previous level is restored on every exit path of the scope, including
// panics and early returns.
//
// # Resource Management
//
// Close flushes and closes the log file. It is safe to call more than once.
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use by multiple goroutines.
package logger
