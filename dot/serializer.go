// ABOUTME: Serializer that converts a material graph back to DOT source accepted by Load.
// ABOUTME: Group nodes are written as nested subgraphs; edges use port identifiers.
package dot

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/2389-research/nodetrace/graph"
)

// Serialize converts a graph to a DOT-formatted string. Node order follows
// the graph; attributes within each element are sorted by key.
func Serialize(g *graph.Graph) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", quoteID(g.Name))
	writeBody(&b, g, "  ")
	b.WriteString("}\n")
	return b.String()
}

func writeBody(b *strings.Builder, g *graph.Graph, indent string) {
	in, out := g.Interface()
	if len(in) > 0 || len(out) > 0 {
		attrs := map[string]string{}
		if len(in) > 0 {
			attrs[attrInterfaceIn] = formatSockets(in)
		}
		if len(out) > 0 {
			attrs[attrInterfaceOut] = formatSockets(out)
		}
		fmt.Fprintf(b, "%sgraph [%s]\n", indent, formatAttrs(attrs))
	}

	for _, n := range g.Nodes {
		if n.Kind == graph.KindGroup {
			if attrs := nodeAttrs(n); len(attrs) > 0 {
				fmt.Fprintf(b, "%s%s [%s]\n", indent, quoteID(n.Name), formatAttrs(attrs))
			}
			fmt.Fprintf(b, "%ssubgraph %s {\n", indent, quoteID(n.Name))
			writeBody(b, n.Subgraph, indent+"  ")
			fmt.Fprintf(b, "%s}\n", indent)
			continue
		}
		fmt.Fprintf(b, "%s%s [%s]\n", indent, quoteID(n.Name), formatAttrs(nodeAttrs(n)))
	}

	// Blank line before edges if there are nodes
	if len(g.Nodes) > 0 && len(g.Links) > 0 {
		b.WriteString("\n")
	}

	for _, l := range g.Links {
		fmt.Fprintf(b, "%s%s:%s -> %s:%s", indent,
			quoteID(l.From.Node.Name), quoteID(l.From.Identifier),
			quoteID(l.To.Node.Name), quoteID(l.To.Identifier))
		if l.Muted {
			b.WriteString(" [muted=true]")
		}
		b.WriteString("\n")
	}
}

// nodeAttrs collects kind, label, props and the defaults of unlinked ports.
func nodeAttrs(n *graph.Node) map[string]string {
	attrs := make(map[string]string, len(n.Props)+2)
	if n.Kind != graph.KindGroup {
		attrs[attrKind] = n.Kind.String()
	}
	if n.Label != "" {
		attrs[attrLabel] = n.Label
	}
	for k, v := range n.Props {
		attrs[k] = v
	}
	if n.Kind == graph.KindGeneric {
		if len(n.Inputs) > 0 {
			attrs[attrInputs] = formatPorts(n.Inputs)
		}
		if len(n.Outputs) > 0 {
			attrs[attrOutputs] = formatPorts(n.Outputs)
		}
	}
	for _, p := range n.Inputs {
		if base, ok := baseDefault(n, p); p.Default != nil && (!ok || !p.Default.Equal(base)) {
			attrs[prefixInDefault+p.Identifier] = p.Default.String()
		}
	}
	if n.Kind == graph.KindValue || n.Kind == graph.KindRGB {
		for _, p := range n.Outputs {
			if p.Default != nil {
				attrs[prefixOutDefault+p.Identifier] = p.Default.String()
			}
		}
	}
	return attrs
}

// baseDefault is the default a freshly loaded node would already carry for p:
// the catalog value, or the interface socket value for groups and markers.
func baseDefault(n *graph.Node, p *graph.Port) (graph.Literal, bool) {
	var sockets []graph.Socket
	switch n.Kind {
	case graph.KindGeneric:
		return nil, false
	case graph.KindGroup:
		sockets, _ = n.Subgraph.Interface()
	case graph.KindGroupOutput:
		_, sockets = n.Graph.Interface()
	default:
		return graph.CatalogDefault(n.Kind, p.Direction, p.Identifier)
	}
	for _, s := range sockets {
		if s.Name == p.Name {
			return s.Default, true
		}
	}
	return nil, false
}

func formatSockets(sockets []graph.Socket) string {
	parts := make([]string, 0, len(sockets))
	for _, s := range sockets {
		parts = append(parts, formatSocket(s.Name, s.DataKind, s.Default))
	}
	return strings.Join(parts, ",")
}

func formatPorts(ports []*graph.Port) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		parts = append(parts, formatSocket(p.Name, p.DataKind, nil))
	}
	return strings.Join(parts, ",")
}

func formatSocket(name string, dk graph.DataKind, def graph.Literal) string {
	s := name + ":" + string(dk)
	if len(def) > 0 {
		s += "=" + strings.ReplaceAll(def.String(), ",", " ")
	}
	return s
}

// formatAttrs renders a map of key=value pairs as a comma-separated string with sorted keys.
func formatAttrs(attrs map[string]string) string {
	keys := sortedKeys(attrs)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", quoteID(k), quoteValue(attrs[k])))
	}
	return strings.Join(parts, ", ")
}

// quoteID quotes node names, port identifiers and keys that are not bare
// DOT IDs. Numbers are quoted too since the lexer would read them as values.
func quoteID(id string) string {
	if isBareID(id) {
		return id
	}
	return quoted(id)
}

// isBareID accepts what the lexer reads back as one identifier: a letter or
// underscore followed by letters, digits, underscores or dots.
func isBareID(id string) bool {
	if id == "" || isKeyword(id) {
		return false
	}
	for i, ch := range id {
		switch {
		case ch == '_' || unicode.IsLetter(ch):
		case i > 0 && (unicode.IsDigit(ch) || ch == '.'):
		default:
			return false
		}
	}
	return true
}

// quoteValue returns a DOT-safe representation of a value.
// Simple identifiers (lowercase letters, digits, underscores, dots for numbers) are returned bare.
// Everything else is double-quoted with proper escaping.
func quoteValue(val string) string {
	if val == "" {
		return `""`
	}

	if isBareIdentifier(val) {
		return val
	}
	return quoted(val)
}

func quoted(val string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, ch := range val {
		switch ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// isBareIdentifier returns true if val can be represented without quotes in DOT.
// A bare identifier consists of lowercase letters, digits and underscores, or
// is a number (with leading minus for negative numbers).
func isBareIdentifier(val string) bool {
	if val == "" {
		return false
	}

	if isNumeric(val) {
		return true
	}

	if unicode.IsDigit(rune(val[0])) {
		return false
	}
	for _, ch := range val {
		if ch != '_' && !unicode.IsLower(ch) && !unicode.IsDigit(ch) {
			return false
		}
	}
	return !isKeyword(val)
}

func isKeyword(val string) bool {
	switch val {
	case "digraph", "subgraph", "graph", "node", "edge", "strict", "true", "false":
		return true
	}
	return false
}

// isNumeric returns true if val looks like a number (integer or float, possibly negative).
func isNumeric(val string) bool {
	if val == "" {
		return false
	}
	start := 0
	if val[0] == '-' {
		if len(val) == 1 {
			return false
		}
		start = 1
	}
	hasDot := false
	hasDigit := false
	for i := start; i < len(val); i++ {
		ch := val[i]
		if ch == '.' {
			if hasDot {
				return false
			}
			hasDot = true
		} else if ch >= '0' && ch <= '9' {
			hasDigit = true
		} else {
			return false
		}
	}
	return hasDigit
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return []string{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
