package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "razd"

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// RazdHome returns the directory holding the user configuration.
// RAZD_HOME overrides the default of ~/.razd.
func RazdHome() string {
	if dir := os.Getenv("RAZD_HOME"); dir != "" {
		return ExpandPath(dir)
	}
	return filepath.Join(HomeDir(), "."+appName)
}

// RazdConfigPath returns the path of the user configuration file.
func RazdConfigPath() string {
	return filepath.Join(RazdHome(), "config.yaml")
}

// DataDir returns the platform data directory for razd: %LOCALAPPDATA%\razd
// on Windows, $XDG_DATA_HOME/razd or ~/.local/share/razd elsewhere.
func DataDir() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(HomeDir(), "AppData", "Local", appName)
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(HomeDir(), ".local", "share", appName)
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(HomeDir(), path[2:])
	}
	return path
}

// CanonicalPath returns the absolute, symlink-resolved form of path. When
// the path cannot be resolved (it does not exist yet) the cleaned absolute
// path is returned.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
