package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the config file looked up when no path is given.
const DefaultFileName = "node.yaml"

// ConfigDir returns the path to the node config directory (~/.gossipnode).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".gossipnode"), nil
}

// EnsureConfigDir creates the config directory if it does not exist.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultPath returns the path to the named config file inside ConfigDir.
// If name is already an absolute path, it returns it as-is.
func DefaultPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
