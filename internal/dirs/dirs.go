// Package dirs resolves the filesystem locations dela reads and writes:
// the user-scoped state directory that holds the persisted allowlist.
package dirs

import (
	"fmt"
	"os"
	"path/filepath"
)

// StateDirName is the directory under $HOME where dela keeps its
// persisted allowlist.
const StateDirName = ".dela"

// AllowlistFileName is the allowlist file, relative to StateDirName.
const AllowlistFileName = "allowlist.toml"

// HomeDir returns the current user's home directory, honoring HOME first
// (spec.md §6 environment inputs) before falling back to os.UserHomeDir.
func HomeDir() (string, error) {
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return h, nil
}

// AllowlistPath returns the absolute path to the persisted allowlist file.
func AllowlistPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, StateDirName, AllowlistFileName), nil
}

// EnsureStateDir creates the ~/.dela directory if it does not exist.
func EnsureStateDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, StateDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}
	return dir, nil
}
