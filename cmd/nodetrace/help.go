// ABOUTME: Help display for the nodetrace CLI with grouped flags, examples, and environment status.
// ABOUTME: Provides printHelp for usage output and envStatus for showing configured variables.
package main

import (
	"fmt"
	"io"
	"os"
)

const banner = `
   o---o
        \      nodetrace
   o-----[x]--> follow every link back
        /
   o---o
`

// printHelp writes a formatted help message to w, including usage patterns,
// grouped flags, examples and environment status.
func printHelp(w io.Writer, ver string) {
	fmt.Fprint(w, banner)
	fmt.Fprintf(w, "nodetrace %s: backward search and pattern extraction for material node graphs\n", ver)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  nodetrace [flags] <material.dot|material.yaml>   Run one query")
	fmt.Fprintln(w, "  nodetrace -server [-port 2390] [-dir <dir>]     Start HTTP query API")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Target Flags:")
	fmt.Fprintln(w, "  -node <name>          Node to query; nested nodes as Group/Node")
	fmt.Fprintln(w, "  -input <port>         Input identifier or name on -node")
	fmt.Fprintln(w, "  -alpha <port>         Alpha input for -vertex-color")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Query Flags (exactly one):")
	fmt.Fprintln(w, "  -search <kind>        Every upstream node of this kind")
	fmt.Fprintln(w, "  -name <node>          Every upstream node with this name (combines with -search)")
	fmt.Fprintln(w, "  -constant             Literal bound to -input")
	fmt.Fprintln(w, "  -factor               Scalar multiplying the signal on -input")
	fmt.Fprintln(w, "  -factor-strict        Like -factor, but the other operand must carry a signal")
	fmt.Fprintln(w, "  -texture              Image texture feeding -input")
	fmt.Fprintln(w, "  -vertex-color         Vertex attribute feeding -input (and -alpha)")
	fmt.Fprintln(w, "  -anisotropy           Anisotropy setup on a principled BSDF -node")
	fmt.Fprintln(w, "  -lint                 Structural checks over the whole material")
	fmt.Fprintln(w, "  -nodes                List all nodes")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output Flags:")
	fmt.Fprintln(w, "  -format <fmt>         text, json or yaml (default: text)")
	fmt.Fprintln(w, "  -max-depth <n>        Traversal depth guard (default: 256)")
	fmt.Fprintln(w, "  -verbose              Log traversal steps and cache statistics")
	fmt.Fprintln(w, "  -dot                  Print the material as normalized DOT (converts YAML too)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server Flags:")
	fmt.Fprintln(w, "  -server               Start HTTP server mode")
	fmt.Fprintln(w, "  -port <port>          Server port (default: 2390)")
	fmt.Fprintln(w, "  -dir <dir>            Material directory (default: ~/.local/share/nodetrace/materials)")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "  -version              Print version and exit")
	fmt.Fprintln(w, "  -help                 Show this help")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, `  nodetrace -node "Principled BSDF" -input Roughness -factor painted.dot`)
	fmt.Fprintln(w, `  nodetrace -node "Principled BSDF" -input "Base Color" -vertex-color -alpha Alpha painted.dot`)
	fmt.Fprintln(w, `  nodetrace -node Lighting/Mix -input A -search rgb -format json lit.dot`)
	fmt.Fprintln(w, `  nodetrace -node "Principled BSDF" -anisotropy brushed.dot`)
	fmt.Fprintln(w, "  nodetrace -lint lit.dot")
	fmt.Fprintln(w, "  nodetrace -dot material.yaml > material.dot")
	fmt.Fprintln(w, "  nodetrace -server -dir ./materials -port 8080")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Exit status: 0 found, 1 absent or failed, 2 usage error.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment (.env and ~/.config/nodetrace/config.env are loaded too):")
	fmt.Fprintf(w, "  NODETRACE_MAX_DEPTH   %s\n", envStatus("NODETRACE_MAX_DEPTH"))
	fmt.Fprintf(w, "  NODETRACE_PORT        %s\n", envStatus("NODETRACE_PORT"))
	fmt.Fprintf(w, "  NODETRACE_DIR         %s\n", envStatus("NODETRACE_DIR"))
}

// envStatus returns the value in brackets if the named environment variable
// is set, or "[not set]" otherwise.
func envStatus(key string) string {
	if v := os.Getenv(key); v != "" {
		return "[" + v + "]"
	}
	return "[not set]"
}
