// ABOUTME: Loads a material graph file, choosing the DOT or YAML loader by extension.
// ABOUTME: Shared by the CLI and the HTTP material store.
package query

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/2389-research/nodetrace/dot"
	"github.com/2389-research/nodetrace/graph"
)

// Extensions lists the file extensions LoadFile understands.
var Extensions = []string{".dot", ".gv", ".yaml", ".yml"}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// LoadFile loads a .dot/.gv or .yaml/.yml material graph.
func LoadFile(path string) (*graph.Graph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return dot.LoadFile(path)
	case ".yaml", ".yml":
		return graph.LoadYAMLFile(path)
	}
	return nil, fmt.Errorf("unsupported graph file %q (want one of %s)", path, strings.Join(Extensions, ", "))
}
