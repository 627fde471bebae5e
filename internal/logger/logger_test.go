package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, enabled bool, level Level) (*DefaultLogger, string, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	l := NewWithOutput(enabled, logFile, level, stdout, stderr)
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Logf("Failed to close logger: %v", err)
		}
	})

	return l, logFile, stdout, stderr
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestNew(t *testing.T) {
	t.Run("FileLoggingDisabled", func(t *testing.T) {
		l, logFile, _, _ := newTestLogger(t, false, WarnLevel)
		require.NotNil(t, l)

		_, err := os.Stat(logFile)
		assert.True(t, os.IsNotExist(err), "no log file should be created when file logging is disabled")
		assert.Empty(t, l.LogFile())
	})

	t.Run("FileLoggingEnabled", func(t *testing.T) {
		l, logFile, _, _ := newTestLogger(t, true, WarnLevel)
		require.NotNil(t, l)

		assert.Equal(t, logFile, l.LogFile())
		assert.Contains(t, readLog(t, logFile), "dirlock debug logging started")
	})
}

func TestLogging_WritesEveryLevelToFile(t *testing.T) {
	l, logFile, _, stderr := newTestLogger(t, true, ErrorLevel)

	l.Debug("Test debug message")
	l.Info("Test info message")
	l.Warning("Test warning message")
	l.Error("Test error message")

	content := readLog(t, logFile)
	assert.Contains(t, content, "Test debug message")
	assert.Contains(t, content, "Test info message")
	assert.Contains(t, content, "Test warning message")
	assert.Contains(t, content, "Test error message")

	// Console only shows what the level allows, errors always
	assert.NotContains(t, stderr.String(), "Test info message")
	assert.NotContains(t, stderr.String(), "Test warning message")
	assert.Contains(t, stderr.String(), "❌ Test error message")
}

func TestLogging_ConsoleRespectsLevel(t *testing.T) {
	tests := map[string]struct {
		level      Level
		visible    []string
		notVisible []string
	}{
		"Debug": {
			level:   DebugLevel,
			visible: []string{"debug line", "info line", "warn line"},
		},
		"Warn": {
			level:      WarnLevel,
			visible:    []string{"warn line"},
			notVisible: []string{"debug line", "info line"},
		},
		"Error": {
			level:      ErrorLevel,
			notVisible: []string{"debug line", "info line", "warn line"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			l, _, _, stderr := newTestLogger(t, false, test.level)

			l.Debug("debug line")
			l.Info("info line")
			l.Warning("warn line")

			for _, s := range test.visible {
				assert.Contains(t, stderr.String(), s)
			}
			for _, s := range test.notVisible {
				assert.NotContains(t, stderr.String(), s)
			}
		})
	}
}

func TestUserMessages(t *testing.T) {
	l, logFile, stdout, _ := newTestLogger(t, true, WarnLevel)

	tests := map[string]struct {
		emit     func()
		prefix   string
		expected string
	}{
		"InfoToUser": {
			emit:     func() { l.InfoToUser("Test info to user: %s", "message") },
			prefix:   "ℹ️",
			expected: "Test info to user: message",
		},
		"Success": {
			emit:     func() { l.Success("Success message: %s", "completed") },
			prefix:   "✅",
			expected: "Success message: completed",
		},
		"WarningToUser": {
			emit:     func() { l.WarningToUser("Warning to user: %s", "be careful") },
			prefix:   "⚠️",
			expected: "Warning to user: be careful",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			stdout.Reset()
			test.emit()

			assert.Contains(t, stdout.String(), test.prefix)
			assert.Contains(t, stdout.String(), test.expected)
			assert.Contains(t, readLog(t, logFile), test.expected)
		})
	}

	t.Run("StatusMessage", func(t *testing.T) {
		stdout.Reset()
		l.StatusMessage("Status: %d", 1)
		assert.Equal(t, "Status: 1\n", stdout.String())
		assert.NotContains(t, readLog(t, logFile), "Status: 1")
	})
}

func TestUserMessages_SuppressedWhenQuiet(t *testing.T) {
	l, logFile, stdout, _ := newTestLogger(t, true, ErrorLevel)

	l.InfoToUser("hidden info")
	l.Success("hidden success")
	l.StatusMessage("hidden status")

	assert.Empty(t, stdout.String())
	assert.Contains(t, readLog(t, logFile), "hidden info")
}

func TestPushLevel_RestoresPreviousLevel(t *testing.T) {
	l, _, _, _ := newTestLogger(t, false, WarnLevel)

	restore := l.PushLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.GetLevel())

	inner := l.PushLevel(ErrorLevel)
	assert.Equal(t, ErrorLevel, l.GetLevel())

	inner()
	assert.Equal(t, DebugLevel, l.GetLevel())

	restore()
	assert.Equal(t, WarnLevel, l.GetLevel())

	// Calling restore again is harmless
	l.SetLevel(InfoLevel)
	restore()
	assert.Equal(t, InfoLevel, l.GetLevel())
}

func TestPushLevel_RestoredByDefer(t *testing.T) {
	l, _, _, _ := newTestLogger(t, false, WarnLevel)

	func() {
		defer l.PushLevel(DebugLevel)()
		assert.Equal(t, DebugLevel, l.GetLevel())
		panicked := func() (recovered any) {
			defer func() { recovered = recover() }()
			defer l.PushLevel(ErrorLevel)()
			panic("boom")
		}()
		assert.Equal(t, "boom", panicked)
		assert.Equal(t, DebugLevel, l.GetLevel())
	}()

	assert.Equal(t, WarnLevel, l.GetLevel())
}

func TestClose_IsIdempotent(t *testing.T) {
	l, _, _, _ := newTestLogger(t, true, WarnLevel)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	// Logging after close must not panic
	l.Info("after close")
}

func TestDefault(t *testing.T) {
	original := Default()
	require.NotNil(t, original)
	t.Cleanup(func() { SetDefault(original) })

	replacement := NewWithOutput(false, "", InfoLevel, &bytes.Buffer{}, &bytes.Buffer{})
	SetDefault(replacement)
	assert.Same(t, replacement, Default())

	SetDefault(nil)
	assert.Same(t, replacement, Default())
}
