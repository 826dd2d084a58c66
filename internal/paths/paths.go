// Package paths resolves the configuration, data, and content directories.
// Each directory follows the same precedence: flag, then config.yaml, then
// environment, then a default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user platform directories.
const appName = "navsphere"

// CWD-relative directory names used when nothing else is configured.
const (
	DefaultDataDirName    = ".navsphere-db"
	DefaultContentDirName = ".navsphere-content"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir  = "NAVSPHERE_CONFIG_DIR"
	EnvDataDir    = "NAVSPHERE_DATA_DIR"
	EnvContentDir = "NAVSPHERE_CONTENT_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/navsphere (fallback ~/.config/navsphere)
// macOS:   ~/Library/Application Support/navsphere
// Windows: %APPDATA%/navsphere
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific data directory.
//
// Linux:   $XDG_DATA_HOME/navsphere (fallback ~/.local/share/navsphere)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	return platformPath("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformPath(xdgVar, homeRel string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(xdgVar); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeRel, appName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory: flag, then
// NAVSPHERE_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok, err := firstSet(flag, os.Getenv(EnvConfigDir)); ok || err != nil {
		return dir, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the SQLite data directory: flag, then config.yaml,
// then NAVSPHERE_DATA_DIR, then $(CWD)/.navsphere-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolveLocal(DefaultDataDirName, flag, configValue, os.Getenv(EnvDataDir))
}

// ResolveContentDir returns the file commit store root: flag, then
// config.yaml, then NAVSPHERE_CONTENT_DIR, then $(CWD)/.navsphere-content.
func ResolveContentDir(flag, configValue string) (string, error) {
	return resolveLocal(DefaultContentDirName, flag, configValue, os.Getenv(EnvContentDir))
}

func resolveLocal(defaultName string, candidates ...string) (string, error) {
	if dir, ok, err := firstSet(candidates...); ok || err != nil {
		return dir, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, defaultName), nil
}

// firstSet returns the absolute form of the first non-empty candidate.
func firstSet(candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		return abs, true, err
	}
	return "", false, nil
}
