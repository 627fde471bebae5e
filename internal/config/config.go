package config

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bashhack/dirlock/internal/constants"
	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/lock"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyDir           = "dir"
	KeyTimeout       = "timeout"
	KeyLifetime      = "lifetime"
	KeyRetryInterval = "retry-interval"
	KeyScratch       = "scratch"
	KeyQuiet         = "quiet"
	KeyVerbose       = "verbose"
	KeyDebug         = "debug"
	KeyLogFile       = "log-file"
	KeyMetricsFile   = "metrics-file"
)

// Config holds all dirlock settings
type Config struct {
	// Managed directory
	Dir string

	// Locking behaviour
	Timeout       time.Duration
	Lifetime      time.Duration
	RetryInterval time.Duration
	UseScratch    bool

	// User experience
	Quiet   bool
	Verbose bool

	// Debugging
	Debug       bool
	LogFile     string
	MetricsFile string

	// Build metadata
	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		Timeout:       lock.DefaultTimeout,
		Lifetime:      lock.DefaultLifetime,
		RetryInterval: lock.DefaultRetryInterval,

		// Default version info, will be overridden if provided
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// BindFlags registers the global flags on fs, using the current values as
// defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyDir, "C", c.Dir, "Directory to lock (default: current directory)")
	fs.Duration(KeyTimeout, c.Timeout, "How long to wait for a busy lock")
	fs.Duration(KeyLifetime, c.Lifetime, "Age after which a lock is considered abandoned")
	fs.Duration(KeyRetryInterval, c.RetryInterval, "Base delay between lock attempts")
	fs.Bool(KeyScratch, c.UseScratch, "Write claim files under "+constants.StateDirName+"/"+constants.ScratchDirName)
	fs.BoolP(KeyQuiet, "q", c.Quiet, "Only print errors")
	fs.BoolP(KeyVerbose, "v", c.Verbose, "Print diagnostic messages")
	fs.Bool(KeyDebug, c.Debug, "Write a debug log")
	fs.String(KeyLogFile, c.LogFile, "Path to log file (default: $XDG_STATE_HOME/dirlock/logs/dirlock-{dir-hash}.log)")
	fs.String(KeyMetricsFile, c.MetricsFile, "Write Prometheus metrics to this file on exit")
}

// Load fills c from, in increasing precedence, the config file in the managed
// directory, DIRLOCK_* environment variables and the flags set on flags.
func (c *Config) Load(v *viper.Viper, flags *pflag.FlagSet) error {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return errors.NewConfigError("flags", nil, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
		}
	}

	c.Dir = v.GetString(KeyDir)
	if err := c.resolveDir(); err != nil {
		return err
	}

	configFile := c.ConfigFile()
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return errors.NewConfigError("config file", configFile,
				errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.NewConfigError("config file", configFile, err)
	}

	c.Timeout = v.GetDuration(KeyTimeout)
	c.Lifetime = v.GetDuration(KeyLifetime)
	c.RetryInterval = v.GetDuration(KeyRetryInterval)
	c.UseScratch = v.GetBool(KeyScratch)
	c.Quiet = v.GetBool(KeyQuiet)
	c.Verbose = v.GetBool(KeyVerbose)
	c.Debug = v.GetBool(KeyDebug)
	c.LogFile = v.GetString(KeyLogFile)
	c.MetricsFile = v.GetString(KeyMetricsFile)

	return nil
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if err := c.resolveDir(); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return errors.NewConfigError(KeyTimeout, c.Timeout,
			errors.Wrap(errors.ErrInvalidConfiguration, "must be positive"))
	}
	if c.Lifetime <= 0 {
		return errors.NewConfigError(KeyLifetime, c.Lifetime,
			errors.Wrap(errors.ErrInvalidConfiguration, "must be positive"))
	}
	if c.RetryInterval <= 0 {
		return errors.NewConfigError(KeyRetryInterval, c.RetryInterval,
			errors.Wrap(errors.ErrInvalidConfiguration, "must be positive"))
	}
	if c.Quiet && c.Verbose {
		return errors.NewConfigError(KeyQuiet, nil,
			errors.Wrap(errors.ErrInvalidConfiguration, "--quiet and --verbose are mutually exclusive"))
	}

	if c.Debug && c.LogFile == "" {
		c.LogFile = DefaultLogFile(c.Dir)
	}

	return nil
}

func (c *Config) resolveDir() error {
	if c.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.NewConfigError(KeyDir, "", errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to get current directory: %v", err)))
		}
		c.Dir = wd
	}

	abs, err := filepath.Abs(c.Dir)
	if err != nil {
		return errors.NewConfigError(KeyDir, c.Dir, errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.Dir = abs

	return nil
}

// StateDir returns the directory whose presence marks Dir as managed.
func (c *Config) StateDir() string {
	return filepath.Join(c.Dir, constants.StateDirName)
}

// LockFile returns the lock file path.
func (c *Config) LockFile() string {
	return filepath.Join(c.StateDir(), constants.LockFileName)
}

// ScratchDir returns the claim directory, or "" when claims live next to
// the lock file.
func (c *Config) ScratchDir() string {
	if !c.UseScratch {
		return ""
	}
	return filepath.Join(c.StateDir(), constants.ScratchDirName)
}

// ConfigFile returns the path of the optional per-directory config file.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.StateDir(), constants.ConfigFileName)
}

// DefaultLogFile returns the debug log path for dir, following the XDG base
// directory layout so logs stay out of the managed directory.
func DefaultLogFile(dir string) string {
	sum := sha256.Sum256([]byte(dir))
	return filepath.Join(xdg.StateHome, constants.AppName, "logs",
		fmt.Sprintf("%s-%x.log", constants.AppName, sum[:8]))
}
