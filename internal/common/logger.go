package common

// Logger defines the common logging interface used throughout the application
type Logger interface {
	// Private logging methods (file only, console when verbose)

	// Debug logs a diagnostic message
	Debug(format string, args ...interface{})

	// Info logs an informational message
	Info(format string, args ...interface{})

	// Warning logs a warning message
	Warning(format string, args ...interface{})

	// Error logs an error message
	Error(format string, args ...interface{})

	// User-facing logging methods (file + stdout)

	// InfoToUser logs an informational message to the user
	InfoToUser(format string, args ...interface{})

	// WarningToUser logs a warning message to the user
	WarningToUser(format string, args ...interface{})

	// Success logs a success message to the user
	Success(format string, args ...interface{})

	// StatusMessage logs a status message to the user
	StatusMessage(format string, args ...interface{})
}

// NopLogger discards every message. It is the default for library callers
// that do not inject a logger.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{})         {}
func (NopLogger) Info(string, ...interface{})          {}
func (NopLogger) Warning(string, ...interface{})       {}
func (NopLogger) Error(string, ...interface{})         {}
func (NopLogger) InfoToUser(string, ...interface{})    {}
func (NopLogger) WarningToUser(string, ...interface{}) {}
func (NopLogger) Success(string, ...interface{})       {}
func (NopLogger) StatusMessage(string, ...interface{}) {}
