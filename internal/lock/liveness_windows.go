//go:build windows

package lock

import "os"

// processAlive reports whether pid can be opened. FindProcess on Windows
// fails for processes that no longer exist.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
