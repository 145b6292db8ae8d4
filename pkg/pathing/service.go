package pathing

import (
	"os"
	"path/filepath"
)

const appDir = "sss_trace_analyzer"

func GetArchiveDbPath() string {
	return filepath.Join(GetDataDir(), "sss-packets.db")
}

func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "analyzer.toml")
}

// GetDataDir is the per-user data directory, falling back to the
// system location when no home directory is known.
func GetDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appDir)
	}
	return filepath.Join("/var/lib", appDir)
}

func GetConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDir)
	}
	return filepath.Join("/etc", appDir)
}

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
