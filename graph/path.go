// ABOUTME: PathToken construction for literal values stored on ports.
// ABOUTME: Tokens are opaque to this module; the export pipeline uses them to retarget animation.
package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// PathToken locates a literal value in the host's property system.
type PathToken string

// DefaultPath returns the token for a port's default value, e.g.
// nodes["Principled BSDF"].inputs[2].default_value. Nodes inside group graphs
// are prefixed with the chain of groups that owns them.
func DefaultPath(p *Port) PathToken {
	coll := "inputs"
	if p.Direction == Output {
		coll = "outputs"
	}
	var b strings.Builder
	writeGroupPrefix(&b, p.Node.Graph)
	fmt.Fprintf(&b, "nodes[%s].%s[%d].default_value", strconv.Quote(p.Node.Name), coll, p.Index)
	return PathToken(b.String())
}

func writeGroupPrefix(b *strings.Builder, g *Graph) {
	if g == nil || g.Owner == nil {
		return
	}
	writeGroupPrefix(b, g.Owner.Graph)
	fmt.Fprintf(b, "groups[%s].", strconv.Quote(g.Owner.Name))
}
