package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/bashhack/dirlock/internal/common"
)

// Level is the verbosity threshold of the console output.
type Level = log.Level

// Console verbosity levels, from most to least chatty.
const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
)

// Logger defines the logging interface used throughout the application.
// It extends common.Logger with verbosity control and resource cleanup.
type Logger interface {
	common.Logger

	// SetLevel changes the console verbosity.
	SetLevel(level Level)

	// GetLevel returns the current console verbosity.
	GetLevel() Level

	// PushLevel sets level for the duration of one scope and returns the
	// function that restores the previous level. The restore function is
	// safe to call more than once.
	PushLevel(level Level) (restore func())

	// Close ensures any buffered data is written and closes open log file handles.
	// This should be called before the application exits to ensure all logs are properly saved.
	Close() error
}

// DefaultLogger writes diagnostics through charmbracelet/log to stderr and,
// when enabled, to a logfmt log file. User-facing messages go to stdout.
type DefaultLogger struct {
	mu      sync.Mutex
	console *log.Logger
	file    *log.Logger
	enabled bool
	logFile string
	stdout  io.Writer
	stderr  io.Writer
	fh      *os.File
}

var defaultLogger atomic.Pointer[DefaultLogger]

func init() {
	defaultLogger.Store(NewWithOutput(false, "", WarnLevel, os.Stdout, os.Stderr))
}

// Default returns the process-wide logger.
func Default() *DefaultLogger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *DefaultLogger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// New creates a DefaultLogger writing to the standard streams
func New(enabled bool, logFile string, level Level) *DefaultLogger {
	return NewWithOutput(enabled, logFile, level, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers
func NewWithOutput(enabled bool, logFile string, level Level, stdout, stderr io.Writer) *DefaultLogger {
	l := &DefaultLogger{
		console: log.NewWithOptions(stderr, log.Options{
			Level:           level,
			ReportTimestamp: false,
			Prefix:          "dirlock",
		}),
		stdout: stdout,
		stderr: stderr,
	}

	if enabled {
		if err := l.EnableFile(logFile); err != nil {
			_, _ = fmt.Fprintf(stderr, "⚠️ Failed to open log file: %v, using stderr only\n", err)
		}
	}

	return l
}

// EnableFile starts writing every message, regardless of console verbosity,
// to logFile. The parent directory is created if needed.
func (l *DefaultLogger) EnableFile(logFile string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fh != nil {
		return nil
	}

	if logDir := filepath.Dir(logFile); logDir != "." {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	l.fh = f
	l.file = log.NewWithOptions(f, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
	l.enabled = true
	l.logFile = logFile
	l.file.Info("dirlock debug logging started", "pid", os.Getpid())

	return nil
}

// LogFile returns the path of the log file, or "" when file logging is off.
func (l *DefaultLogger) LogFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logFile
}

// Debug logs a diagnostic message (console only when the level allows it)
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.console.Debug(msg)
	if l.enabled {
		l.file.Debug(msg)
	}
}

// Info logs an informational message (file, and console when verbose)
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.console.Info(msg)
	if l.enabled {
		l.file.Info(msg)
	}
}

// Warning logs a warning message
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.console.Warn(msg)
	if l.enabled {
		l.file.Warn(msg)
	}
}

// Error logs an error message. Errors are always shown to the user.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.enabled {
		l.file.Error(msg)
	}

	_, _ = fmt.Fprintf(l.stderr, "❌ %s\n", msg)
}

// InfoToUser logs an informational message to both file and stdout
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.toUser(log.InfoLevel, "ℹ️  ", format, args...)
}

// WarningToUser logs a warning message to both file and stdout
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.toUser(log.WarnLevel, "⚠️  ", format, args...)
}

// Success logs a success message to both file and stdout
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.toUser(log.InfoLevel, "✅ ", format, args...)
}

// StatusMessage prints a status message to stdout only (no logging)
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.quiet() {
		return
	}
	_, _ = fmt.Fprintln(l.stdout, msg)
}

func (l *DefaultLogger) toUser(level Level, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.enabled {
		l.file.Log(level, msg)
	}
	if l.quiet() {
		return
	}
	_, _ = fmt.Fprintf(l.stdout, "%s%s\n", prefix, msg)
}

// quiet reports whether user-facing chatter is suppressed. Callers hold mu.
func (l *DefaultLogger) quiet() bool {
	return l.console.GetLevel() >= log.ErrorLevel
}

// SetLevel changes the console verbosity
func (l *DefaultLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console.SetLevel(level)
}

// GetLevel returns the console verbosity
func (l *DefaultLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.console.GetLevel()
}

// PushLevel sets the console verbosity and returns a function restoring the
// previous one.
func (l *DefaultLogger) PushLevel(level Level) func() {
	l.mu.Lock()
	previous := l.console.GetLevel()
	l.console.SetLevel(level)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.SetLevel(previous) })
	}
}

// Close ensures any buffered data is written and closes open log file handles
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fh == nil {
		return nil
	}

	f := l.fh
	l.fh = nil
	l.file = nil
	l.enabled = false

	// Sync ensures any buffered data is flushed to disk before closing
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SetStdout sets a custom writer for user-facing stdout messages only.
// This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for stderr output, including the console
// diagnostics. This method is thread-safe and is primarily intended for testing.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
	l.console.SetOutput(w)
}
