package process

import (
	"os/exec"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/birmarket/supportd/internal/errors"
)

// FindByName returns the pids of all processes whose name matches.
func FindByName(name string) ([]int32, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, errors.ProcessScanFailed(err)
	}

	var pids []int32
	for _, p := range processes {
		pname, err := p.Name()
		if err != nil || pname != name {
			continue
		}
		pids = append(pids, p.Pid)
	}

	return pids, nil
}

// IsRunning reports whether at least one process with the given name exists.
func IsRunning(name string) bool {
	pids, err := FindByName(name)
	if err != nil {
		log.Err(err).Msg("process scan failed")
		return false
	}
	return len(pids) > 0
}

// StartDaemon launches redis-server detached from supportd. The --daemonize
// flag makes redis fork and exit the foreground process, so Run returning
// means the daemon was handed off to the OS.
func StartDaemon(binary string, args ...string) error {
	cmd := exec.Command(binary, args...)
	if err := cmd.Run(); err != nil {
		return errors.ProcessStartFailed(binary, err)
	}
	return nil
}
