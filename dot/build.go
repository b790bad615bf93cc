// ABOUTME: Converts a parsed DOT AST into a graph.Graph, turning subgraphs into group nodes.
// ABOUTME: Node attrs carry kind and props; in.<port>/out.<port> keys set port default literals.
package dot

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/2389-research/nodetrace/graph"
)

// Reserved node attribute keys; everything else becomes a node prop.
const (
	attrKind    = "kind"
	attrLabel   = "label"
	attrInputs  = "inputs"  // generic nodes: "Name:datakind,..."
	attrOutputs = "outputs" // generic nodes: "Name:datakind,..."

	attrInterfaceIn  = "interface_in"
	attrInterfaceOut = "interface_out"

	prefixInDefault  = "in."
	prefixOutDefault = "out."
)

// LoadFile reads a DOT material graph from disk and builds it.
func LoadFile(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %q: %w", path, err)
	}
	g, err := Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load graph file %q: %w", path, err)
	}
	return g, nil
}

// Load parses DOT source and builds the material graph.
func Load(source string) (*graph.Graph, error) {
	ast, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return Build(ast)
}

// Build converts an AST scope into a graph. A node whose ID names a subgraph
// of the same scope becomes that subgraph's group node.
func Build(ast *Graph) (*graph.Graph, error) {
	g := graph.New(ast.Name)

	in, err := parseSockets(ast.Attrs[attrInterfaceIn])
	if err != nil {
		return nil, fmt.Errorf("graph %q %s: %w", ast.Name, attrInterfaceIn, err)
	}
	out, err := parseSockets(ast.Attrs[attrInterfaceOut])
	if err != nil {
		return nil, fmt.Errorf("graph %q %s: %w", ast.Name, attrInterfaceOut, err)
	}
	g.SetInterface(in, out)

	built := make(map[string]bool)
	addGroup := func(sg *Graph) error {
		sub, err := Build(sg)
		if err != nil {
			return fmt.Errorf("group %q: %w", sg.Name, err)
		}
		n, err := g.AddGroup(sg.Name, sub)
		if err != nil {
			return err
		}
		if node := ast.FindNode(sg.Name); node != nil {
			n.Label = node.Attrs[attrLabel]
			if err := applyDefaults(n, node.Attrs); err != nil {
				return err
			}
		}
		built[sg.Name] = true
		return nil
	}

	for _, id := range ast.NodeOrder {
		if sg := ast.FindSubgraph(id); sg != nil {
			if err := addGroup(sg); err != nil {
				return nil, err
			}
			continue
		}
		if err := buildNode(g, ast.Nodes[id]); err != nil {
			return nil, err
		}
	}
	for _, sg := range ast.Subgraphs {
		if built[sg.Name] {
			continue
		}
		if err := addGroup(sg); err != nil {
			return nil, err
		}
	}

	for _, e := range ast.Edges {
		l, err := g.ConnectNames(e.From, e.FromPort, e.To, e.ToPort)
		if err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
		l.Muted = e.Attrs["muted"] == "true"
	}

	return g, nil
}

func buildNode(g *graph.Graph, node *Node) error {
	kindName := node.Attrs[attrKind]
	if kindName == "" {
		kindName = graph.KindGeneric.String()
	}
	kind, err := graph.ParseKind(kindName)
	if err != nil {
		return fmt.Errorf("node %q: %w", node.ID, err)
	}
	if kind == graph.KindGroup {
		return fmt.Errorf("node %q: kind=group requires a subgraph named %q", node.ID, node.ID)
	}

	n, err := g.AddNode(kind, node.ID)
	if err != nil {
		return err
	}
	n.Label = node.Attrs[attrLabel]

	if kind == graph.KindGeneric {
		ins, err := parseSockets(node.Attrs[attrInputs])
		if err != nil {
			return fmt.Errorf("node %q inputs: %w", node.ID, err)
		}
		for _, s := range ins {
			n.AddInput(s.Name, "", s.DataKind, s.Default)
		}
		outs, err := parseSockets(node.Attrs[attrOutputs])
		if err != nil {
			return fmt.Errorf("node %q outputs: %w", node.ID, err)
		}
		for _, s := range outs {
			n.AddOutput(s.Name, "", s.DataKind, s.Default)
		}
	}

	for k, v := range node.Attrs {
		switch {
		case k == attrKind || k == attrLabel || k == attrInputs || k == attrOutputs:
		case strings.HasPrefix(k, prefixInDefault) || strings.HasPrefix(k, prefixOutDefault):
		default:
			n.Props[k] = v
		}
	}
	return applyDefaults(n, node.Attrs)
}

// applyDefaults sets port defaults from in.<ref>= and out.<ref>= attributes.
func applyDefaults(n *graph.Node, attrs map[string]string) error {
	for k, v := range attrs {
		var p *graph.Port
		switch {
		case strings.HasPrefix(k, prefixInDefault):
			ref := strings.TrimPrefix(k, prefixInDefault)
			if p = n.Input(graph.ByIdentifier(ref)); p == nil {
				p = n.InputByName(ref)
			}
		case strings.HasPrefix(k, prefixOutDefault):
			ref := strings.TrimPrefix(k, prefixOutDefault)
			if p = n.Output(graph.ByIdentifier(ref)); p == nil {
				p = n.OutputByName(ref)
			}
		default:
			continue
		}
		if p == nil {
			return fmt.Errorf("node %q has no port for %q", n.Name, k)
		}
		lit, err := ParseLiteral(v)
		if err != nil {
			return fmt.Errorf("node %q %s: %w", n.Name, k, err)
		}
		p.Default = lit
	}
	return nil
}

// ParseLiteral parses "0.7" or "0.8,0.8,0.8,1".
func ParseLiteral(s string) (graph.Literal, error) {
	parts := strings.Split(s, ",")
	lit := make(graph.Literal, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal %q: %w", s, err)
		}
		lit = append(lit, v)
	}
	return lit, nil
}

// parseSockets parses "Name:datakind=default,..." lists. Defaults of
// multi-component sockets are separated by spaces: "Tint:color=1 1 1 1".
func parseSockets(spec string) ([]graph.Socket, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	var sockets []graph.Socket
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		decl, def, hasDef := strings.Cut(item, "=")
		name, dk, _ := strings.Cut(decl, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty socket name in %q", spec)
		}
		s := graph.Socket{Name: name, DataKind: graph.DataKind(strings.TrimSpace(dk))}
		if s.DataKind == "" {
			s.DataKind = graph.DataFloat
		}
		if hasDef {
			lit, err := ParseLiteral(strings.Join(strings.Fields(def), ","))
			if err != nil {
				return nil, fmt.Errorf("socket %q: %w", name, err)
			}
			s.Default = lit
		}
		sockets = append(sockets, s)
	}
	return sockets, nil
}
