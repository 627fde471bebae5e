//go:build !windows

package lock

// claimSeparator joins the lock path and token fields in claim names.
const claimSeparator = "|"
