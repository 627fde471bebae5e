// Package config provides configuration handling for the dirlock application.
//
// This package manages all configuration parameters for dirlock: the global
// command-line flags, DIRLOCK_* environment variables, an optional config
// file inside the managed directory, and the defaults. It ensures values are
// consistent and valid before they are used by the application.
//
// # Core Components
//
// - Config: Main configuration type that holds all dirlock settings
// - VersionInfo: Type for version, commit, and build date information
//
// # Configuration Sources
//
// Configuration values are loaded through viper with the following precedence:
//
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. The config file <dir>/.dirlock/config.yaml
// 4. Default values (lowest priority)
//
// # Environment Variables
//
// Every flag has an environment variable named after it:
//
//	DIRLOCK_DIR             Directory to lock (default: current directory)
//	DIRLOCK_TIMEOUT         How long to wait for a busy lock (default: 5s)
//	DIRLOCK_LIFETIME        Age after which a lock is abandoned (default: 8760h)
//	DIRLOCK_RETRY_INTERVAL  Base delay between attempts (default: 100ms)
//	DIRLOCK_SCRATCH         Write claim files under .dirlock/tmp (default: false)
//	DIRLOCK_QUIET           Only print errors (default: false)
//	DIRLOCK_VERBOSE         Print diagnostic messages (default: false)
//	DIRLOCK_DEBUG           Write a debug log (default: false)
//	DIRLOCK_LOG_FILE        Path to log file (default: $XDG_STATE_HOME/dirlock/logs/dirlock-<hash>.log)
//	DIRLOCK_METRICS_FILE    Write Prometheus metrics to this file on exit
//
// # Usage
//
//	cfg := config.New()
//	cfg.BindFlags(cmd.PersistentFlags())
//
//	// after flag parsing
//	if err := cfg.Load(viper.New(), cmd.Flags()); err != nil {
//	    // Handle error
//	}
//	if err := cfg.Finalize(); err != nil {
//	    // Handle error
//	}
//
// # Thread Safety
//
// The Config type is not designed to be thread-safe. Configuration is loaded
// once per invocation and then used in a read-only fashion.
package config
