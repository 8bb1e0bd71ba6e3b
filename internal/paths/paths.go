// Package paths resolves the tablectl configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user directories.
const appName = "tablectl"

// RepoConfigDirName is a configuration directory checked into the
// repository that holds the definitions. It is used when present in the
// working directory and no flag or environment override is set.
const RepoConfigDirName = ".tablectl"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TABLECTL_CONFIG_DIR"
	EnvDataDir   = "TABLECTL_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/tablectl (fallback ~/.config/tablectl)
// macOS:   ~/Library/Application Support/tablectl
// Windows: %APPDATA%/tablectl
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultDataDir returns the per-user data directory, where the local
// catalog lives.
//
// Linux:   $XDG_DATA_HOME/tablectl (fallback ~/.local/share/tablectl)
// macOS:   ~/Library/Application Support/tablectl/data
// Windows: %APPDATA%/tablectl/data
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "data"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > TABLECTL_CONFIG_DIR > ./.tablectl if it exists > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	repoDir := filepath.Join(cwd, RepoConfigDirName)
	if info, err := os.Stat(repoDir); err == nil && info.IsDir() {
		return repoDir, nil
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory:
// flag > data_dir from config.yaml > TABLECTL_DATA_DIR > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, v := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	return DefaultDataDir()
}
