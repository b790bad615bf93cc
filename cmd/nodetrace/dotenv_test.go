// ABOUTME: Tests for the .env parser and loader: quoting, comments, export prefix and no-clobber.
// ABOUTME: Also checks that the XDG config file is among the auto-loaded candidates.
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseDotEnv(t *testing.T) {
	src := strings.Join([]string{
		"# comment",
		"",
		"NODETRACE_PORT=8080",
		`NODETRACE_DIR="/srv/materials dir"`,
		"export NODETRACE_MAX_DEPTH='64'",
		"EQUALS=a=b=c",
		"MISMATCHED=\"half'",
		"not a pair",
		"=novalue",
		"NODETRACE_PORT=9090",
	}, "\n")
	got, err := parseDotEnv(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"NODETRACE_PORT":      "9090",
		"NODETRACE_DIR":       "/srv/materials dir",
		"NODETRACE_MAX_DEPTH": "64",
		"EQUALS":              "a=b=c",
		"MISMATCHED":          "\"half'",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseDotEnv mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := writeTempEnv(t, "TEST_NODETRACE_A=hello\n")
	t.Setenv("TEST_NODETRACE_A", "")
	os.Unsetenv("TEST_NODETRACE_A")

	loadDotEnv(path)

	if got := os.Getenv("TEST_NODETRACE_A"); got != "hello" {
		t.Errorf("expected TEST_NODETRACE_A=hello, got %q", got)
	}
}

func TestLoadDotEnvDoesNotClobberExisting(t *testing.T) {
	path := writeTempEnv(t, "TEST_NODETRACE_X=from_file")
	t.Setenv("TEST_NODETRACE_X", "already_set")

	loadDotEnv(path)

	if got := os.Getenv("TEST_NODETRACE_X"); got != "already_set" {
		t.Errorf("expected existing env var to be preserved, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsNoOp(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestDotEnvPathsIncludeXDGConfig(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)

	paths := dotEnvPaths()
	want := filepath.Join(configDir, "nodetrace", "config.env")
	if len(paths) == 0 || paths[len(paths)-1] != want {
		t.Errorf("expected last candidate %q, got %v", want, paths)
	}
}

func TestLoadDotEnvAutoLoadsXDGConfig(t *testing.T) {
	configDir := t.TempDir()
	dir := filepath.Join(configDir, "nodetrace")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.env"), []byte("TEST_NODETRACE_XDG=from_xdg\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CONFIG_HOME", configDir)
	t.Setenv("TEST_NODETRACE_XDG", "")
	os.Unsetenv("TEST_NODETRACE_XDG")

	loadDotEnvAuto()

	if got := os.Getenv("TEST_NODETRACE_XDG"); got != "from_xdg" {
		t.Errorf("expected TEST_NODETRACE_XDG=from_xdg, got %q", got)
	}
}
