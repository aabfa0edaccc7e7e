// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the backend API token goes to the
// OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"pyrun/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// BackendURL is the externally configured base URL of the execution
	// backend. Empty means not configured.
	BackendURL string `json:"backend_url,omitempty"`
	// Local opts into the fixed local-development endpoint when no backend
	// URL is configured.
	Local bool `json:"local,omitempty"`
	// DefaultMode is the execution mode used when --mode is not given.
	DefaultMode string `json:"default_mode"`
	// HistoryDisabled turns off local run history recording.
	HistoryDisabled bool `json:"history_disabled,omitempty"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.DefaultMode = "script"
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.DefaultMode == "" {
		c.DefaultMode = "script"
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
