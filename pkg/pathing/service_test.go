package pathing

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPathsFollowHome(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "cfg"))

	if got, want := GetConfigPath(), filepath.Join(home, "cfg", appDir, "analyzer.toml"); got != want {
		t.Fatalf("GetConfigPath() = %q, want %q", got, want)
	}
	if got, want := GetArchiveDbPath(), filepath.Join(home, ".local", "share", appDir, "sss-packets.db"); got != want {
		t.Fatalf("GetArchiveDbPath() = %q, want %q", got, want)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("second EnsureDir: %v", err)
	}
}
