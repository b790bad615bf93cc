// ABOUTME: Loads NODETRACE_* settings from .env files and the XDG config file at startup.
// ABOUTME: Values already present in the environment always win (no clobber).
package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// parseDotEnv reads KEY=VALUE lines. Blank lines and # comments are skipped;
// an "export " prefix and one pair of matching quotes around the value are
// stripped. Later duplicates win.
func parseDotEnv(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = unquote(strings.TrimSpace(value))
	}
	return vars, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// loadDotEnv applies the variables of one file. A missing or unreadable file
// is ignored.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	vars, err := parseDotEnv(f)
	if err != nil {
		return
	}
	for k, v := range vars {
		if _, exists := os.LookupEnv(k); !exists {
			os.Setenv(k, v)
		}
	}
}

// dotEnvPaths lists candidate files in load order: .env in the working
// directory and its parents (nearest first), then
// $XDG_CONFIG_HOME/nodetrace/config.env (or ~/.config/nodetrace/config.env).
func dotEnvPaths() []string {
	var paths []string
	if wd, err := os.Getwd(); err == nil {
		for dir := wd; ; {
			paths = append(paths, filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "nodetrace", "config.env"))
	}
	return paths
}

// loadDotEnvAuto loads every candidate file. Since nothing is overwritten,
// nearer files take precedence over farther ones.
func loadDotEnvAuto() {
	for _, p := range dotEnvPaths() {
		loadDotEnv(p)
	}
}
