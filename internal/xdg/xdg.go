// Package xdg resolves XDG Base Directory paths for pyrun. Configuration and
// local state (the run history database) live in separate directories per the
// spec, with fallbacks to the traditional ~/.config and ~/.local/state
// locations when the XDG environment variables are unset.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "pyrun"

// ConfigDir returns the pyrun config directory, creating it with private
// permissions (0700) when missing.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return ensure(filepath.Join(base, appDir))
}

// StateDir returns the pyrun state directory (run history lives here),
// creating it with private permissions (0700) when missing.
func StateDir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return ensure(filepath.Join(base, appDir))
}

func ensure(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
