// ABOUTME: Tests for the nodetrace CLI help display covering content, flags and env detection.
// ABOUTME: Checks usage patterns, every flag, examples, and the environment status column.
package main

import (
	"bytes"
	"flag"
	"io"
	"strings"
	"testing"
)

func TestPrintHelpContainsProjectNameAndVersion(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "1.2.3")
	out := buf.String()

	if !strings.Contains(out, "nodetrace 1.2.3") {
		t.Error("expected help output to contain name and version")
	}
}

func TestPrintHelpContainsAllFlags(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "dev")
	out := buf.String()

	flags := []string{
		"-node", "-input", "-alpha", "-search", "-name", "-constant", "-factor", "-factor-strict",
		"-texture", "-vertex-color", "-anisotropy", "-lint", "-nodes", "-format", "-max-depth",
		"-verbose", "-dot", "-server", "-port", "-dir", "-version", "-help",
	}
	for _, f := range flags {
		if !strings.Contains(out, f) {
			t.Errorf("expected help to mention flag %q", f)
		}
	}
}

func TestPrintHelpMentionsEveryParsedFlag(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "dev")
	out := buf.String()

	fs := newFlagSet(&config{}, io.Discard)
	fs.VisitAll(func(f *flag.Flag) {
		if !strings.Contains(out, "-"+f.Name) {
			t.Errorf("flag -%s is parsed but not documented", f.Name)
		}
	})
}

func TestPrintHelpEnvStatus(t *testing.T) {
	t.Setenv("NODETRACE_PORT", "8080")
	t.Setenv("NODETRACE_DIR", "")

	var buf bytes.Buffer
	printHelp(&buf, "dev")
	out := buf.String()

	if !strings.Contains(out, "NODETRACE_PORT        [8080]") {
		t.Errorf("expected NODETRACE_PORT status, got:\n%s", out)
	}
	if !strings.Contains(out, "NODETRACE_DIR         [not set]") {
		t.Errorf("expected NODETRACE_DIR not set, got:\n%s", out)
	}
}
