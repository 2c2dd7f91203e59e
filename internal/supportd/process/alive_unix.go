//go:build !windows

package process

import "syscall"

// Alive reports whether a process with the given pid exists. Signal 0
// performs the existence check without delivering anything.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}

	// ESRCH means the process does not exist. EPERM means it exists but
	// belongs to another user.
	return err != syscall.ESRCH
}
