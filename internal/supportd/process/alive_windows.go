//go:build windows

package process

import "github.com/shirou/gopsutil/v4/process"

// Alive reports whether a process with the given pid exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	exists, err := process.PidExists(int32(pid))
	if err != nil {
		return false
	}
	return exists
}
