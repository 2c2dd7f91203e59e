package util

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultWorkDir returns the per-user working directory for supportd state
// (logs, the history database, pid files).
func DefaultWorkDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.ExpandEnv("${USERPROFILE}"), ".supportd")
	default:
		return filepath.Join(os.ExpandEnv("${HOME}"), ".supportd")
	}
}

// PrepareDir ensures that the specified directory path exists.
// If the directory does not exist, it attempts to create it.
func PrepareDir(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(path, 0755)
		}
		return err
	}
	if !stat.IsDir() {
		return os.ErrInvalid
	}
	return nil
}
