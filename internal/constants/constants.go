package constants

const (
	// AppName is the binary name used in messages and paths
	AppName = "dirlock"

	// StateDirName is the per-directory marker and state directory
	StateDirName = ".dirlock"

	// LockFileName is the lock artifact inside StateDirName
	LockFileName = "lock"

	// ScratchDirName holds claim files when redirection is enabled
	ScratchDirName = "tmp"

	// ConfigFileName is the optional per-directory configuration file
	ConfigFileName = "config.yaml"

	// EnvPrefix prefixes every environment variable read by dirlock
	EnvPrefix = "DIRLOCK"

	// Footer is printed after any failed invocation
	Footer = "Having any troubles? Run `dirlock status` to see who holds the lock."
)
