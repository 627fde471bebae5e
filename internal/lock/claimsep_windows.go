//go:build windows

package lock

// claimSeparator joins the lock path and token fields in claim names. The
// pipe is reserved in Windows file names.
const claimSeparator = "^"
