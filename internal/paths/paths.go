// Package paths resolves where storeadmin keeps its config file, its
// database and its log.
package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// AppName names the per-user directories.
const AppName = "storeadmin"

// File names inside the resolved directories.
const (
	ConfigFileName = "config.yaml"
	LogFileName    = "storeadmin.log"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "STOREADMIN_CONFIG_DIR"
	EnvDataDir   = "STOREADMIN_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/storeadmin (fallback ~/.config/storeadmin)
// macOS:   ~/Library/Application Support/storeadmin
// Windows: %APPDATA%/storeadmin
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/storeadmin (fallback ~/.local/share/storeadmin)
// macOS:   ~/Library/Application Support/storeadmin
// Windows: %APPDATA%/storeadmin
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", AppName), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > STOREADMIN_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > STOREADMIN_DATA_DIR env > DefaultDataDir().
func ResolveDataDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultDataDir()
}

// ResolveDatabase places a database path from config.yaml. Absolute paths
// are kept; relative ones are joined to dataDir. An empty value yields the
// default database file in dataDir.
func ResolveDatabase(dataDir, configured string) string {
	if configured == "" {
		configured = types.DefaultDatabase
	}
	return ResolveIn(dataDir, configured)
}

// ResolveLogFile places the log file the same way, defaulting to
// LogFileName in dataDir.
func ResolveLogFile(dataDir, configured string) string {
	if configured == "" {
		configured = LogFileName
	}
	return ResolveIn(dataDir, configured)
}

// ResolveIn keeps an absolute name and joins a relative one to dir.
func ResolveIn(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
