// Package constants provides application-wide constant values for the dirlock application.
//
// It centralizes the names of the on-disk layout and the fixed user-facing
// strings so the CLI, the configuration layer and the tests agree on them.
//
// # On-disk Layout
//
//	<dir>/.dirlock/             marker; a directory without it is not managed
//	<dir>/.dirlock/lock         lock artifact
//	<dir>/.dirlock/tmp/         claim files, when scratch redirection is enabled
//	<dir>/.dirlock/config.yaml  optional configuration
//
// # Usage
//
//	import "github.com/bashhack/dirlock/internal/constants"
//
//	lockFile := filepath.Join(dir, constants.StateDirName, constants.LockFileName)
package constants
