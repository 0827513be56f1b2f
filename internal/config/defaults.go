package config

import (
	"os"
	"path/filepath"
)

// DefaultBackendURL is where the local processing backend listens.
const DefaultBackendURL = "http://127.0.0.1:5000"

// DefaultDataDir returns the per-user directory holding persisted settings.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return filepath.Join(homeDir, ".subtitle-merger")
}
