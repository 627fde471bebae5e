package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/lock"
)

// load parses args against a fresh flag set and loads c from it.
func load(t *testing.T, c *Config, args ...string) error {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(flags)
	require.NoError(t, flags.Parse(args))

	return c.Load(viper.New(), flags)
}

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()

	stateDir := filepath.Join(dir, ".dirlock")
	require.NoError(t, os.MkdirAll(stateDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(content), 0644))
}

func TestNewConfig(t *testing.T) {
	c := New()

	assert.Equal(t, lock.DefaultTimeout, c.Timeout)
	assert.Equal(t, lock.DefaultLifetime, c.Lifetime)
	assert.Equal(t, lock.DefaultRetryInterval, c.RetryInterval)
	assert.False(t, c.UseScratch)
	assert.False(t, c.Quiet)
	assert.False(t, c.Verbose)
	assert.False(t, c.Debug)
	assert.Equal(t, "dev", c.VersionInfo.Version)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	c := New()

	require.NoError(t, load(t, c, "--dir", dir))

	assert.Equal(t, dir, c.Dir)
	assert.Equal(t, lock.DefaultTimeout, c.Timeout)
	assert.Equal(t, lock.DefaultLifetime, c.Lifetime)
	assert.Equal(t, lock.DefaultRetryInterval, c.RetryInterval)
	assert.Empty(t, c.LogFile)
}

func TestLoad_Precedence(t *testing.T) {
	tests := map[string]struct {
		configFile string
		env        map[string]string
		args       []string
		expected   time.Duration
	}{
		"ConfigFile": {
			configFile: "timeout: 7s\n",
			expected:   7 * time.Second,
		},
		"EnvironmentOverridesConfigFile": {
			configFile: "timeout: 7s\n",
			env:        map[string]string{"DIRLOCK_TIMEOUT": "9s"},
			expected:   9 * time.Second,
		},
		"FlagOverridesEverything": {
			configFile: "timeout: 7s\n",
			env:        map[string]string{"DIRLOCK_TIMEOUT": "9s"},
			args:       []string{"--timeout", "11s"},
			expected:   11 * time.Second,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfigFile(t, dir, test.configFile)
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			c := New()
			require.NoError(t, load(t, c, append([]string{"--dir", dir}, test.args...)...))
			assert.Equal(t, test.expected, c.Timeout)
		})
	}
}

func TestLoad_AllKeys(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, strings.Join([]string{
		"lifetime: 2h",
		"retry-interval: 250ms",
		"scratch: true",
		"verbose: true",
		"metrics-file: /tmp/dirlock.prom",
	}, "\n"))
	t.Setenv("DIRLOCK_DEBUG", "true")
	t.Setenv("DIRLOCK_LOG_FILE", "/tmp/dirlock.log")

	c := New()
	require.NoError(t, load(t, c, "--dir", dir))

	assert.Equal(t, 2*time.Hour, c.Lifetime)
	assert.Equal(t, 250*time.Millisecond, c.RetryInterval)
	assert.True(t, c.UseScratch)
	assert.True(t, c.Verbose)
	assert.True(t, c.Debug)
	assert.Equal(t, "/tmp/dirlock.log", c.LogFile)
	assert.Equal(t, "/tmp/dirlock.prom", c.MetricsFile)
}

func TestLoad_DirFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DIRLOCK_DIR", dir)

	c := New()
	require.NoError(t, load(t, c))
	assert.Equal(t, dir, c.Dir)
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "timeout: [unterminated\n")

	c := New()
	err := load(t, c, "--dir", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)

	var configErr *errors.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "config file", configErr.Parameter)
}

func TestFinalize(t *testing.T) {
	tests := map[string]struct {
		mutate    func(c *Config)
		errParam  string
		expectErr bool
	}{
		"Valid": {
			mutate: func(c *Config) {},
		},
		"ZeroTimeout": {
			mutate:    func(c *Config) { c.Timeout = 0 },
			errParam:  KeyTimeout,
			expectErr: true,
		},
		"NegativeLifetime": {
			mutate:    func(c *Config) { c.Lifetime = -time.Second },
			errParam:  KeyLifetime,
			expectErr: true,
		},
		"ZeroRetryInterval": {
			mutate:    func(c *Config) { c.RetryInterval = 0 },
			errParam:  KeyRetryInterval,
			expectErr: true,
		},
		"QuietAndVerbose": {
			mutate:    func(c *Config) { c.Quiet, c.Verbose = true, true },
			errParam:  KeyQuiet,
			expectErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c := New()
			c.Dir = t.TempDir()
			test.mutate(c)

			err := c.Finalize()
			if !test.expectErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)

			var configErr *errors.ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, test.errParam, configErr.Parameter)
		})
	}
}

func TestFinalize_ResolvesDirectory(t *testing.T) {
	c := New()
	require.NoError(t, c.Finalize())

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, c.Dir)

	c = New()
	c.Dir = "relative/path"
	require.NoError(t, c.Finalize())
	assert.True(t, filepath.IsAbs(c.Dir))
}

func TestFinalize_DebugLogFile(t *testing.T) {
	c := New()
	c.Dir = t.TempDir()
	c.Debug = true

	require.NoError(t, c.Finalize())

	assert.Equal(t, DefaultLogFile(c.Dir), c.LogFile)
	assert.True(t, strings.HasPrefix(c.LogFile, filepath.Join(xdg.StateHome, "dirlock", "logs")))
	assert.False(t, strings.HasPrefix(c.LogFile, c.Dir), "logs stay outside the managed directory")

	explicit := New()
	explicit.Dir = c.Dir
	explicit.Debug = true
	explicit.LogFile = "/tmp/custom.log"
	require.NoError(t, explicit.Finalize())
	assert.Equal(t, "/tmp/custom.log", explicit.LogFile)
}

func TestDefaultLogFile_PerDirectory(t *testing.T) {
	a := DefaultLogFile("/srv/a")
	b := DefaultLogFile("/srv/b")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, DefaultLogFile("/srv/a"))
	assert.Regexp(t, `dirlock-[0-9a-f]{16}\.log$`, a)
}

func TestPaths(t *testing.T) {
	c := New()
	c.Dir = "/srv/data"

	assert.Equal(t, "/srv/data/.dirlock", c.StateDir())
	assert.Equal(t, "/srv/data/.dirlock/lock", c.LockFile())
	assert.Equal(t, "/srv/data/.dirlock/config.yaml", c.ConfigFile())
	assert.Empty(t, c.ScratchDir())

	c.UseScratch = true
	assert.Equal(t, "/srv/data/.dirlock/tmp", c.ScratchDir())
}
