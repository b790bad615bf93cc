// ABOUTME: XDG-based default for the directory of material graphs served by nodetrace -server.
// ABOUTME: Checks XDG_DATA_HOME, falls back to ~/.local/share/nodetrace/materials.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// resolveDir returns the material directory to serve, preferring an explicit
// override and falling back to the XDG-based default.
func resolveDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return defaultDataDir()
}

// defaultDataDir returns the default material directory.
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "nodetrace", "materials"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "nodetrace", "materials"), nil
}
