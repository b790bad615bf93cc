// ABOUTME: Read-only material graph model: Graph, Node, Port and Link with lookup helpers.
// ABOUTME: Inputs admit one incoming link, outputs fan out; group nodes own a nested Graph.
package graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Direction is the fixed direction of a port.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// DataKind tags the type of value a port carries.
type DataKind string

const (
	DataFloat  DataKind = "float"
	DataColor  DataKind = "color"
	DataVector DataKind = "vector"
	DataShader DataKind = "shader"
	DataOpaque DataKind = "opaque"
)

// Literal is a port default or constant node value: one element for scalars,
// three for vectors, four for colors.
type Literal []float64

// Scalar returns the first component, or 0 for an empty literal.
func (l Literal) Scalar() float64 {
	if len(l) == 0 {
		return 0
	}
	return l[0]
}

// Clone returns an independent copy.
func (l Literal) Clone() Literal {
	if l == nil {
		return nil
	}
	out := make(Literal, len(l))
	copy(out, l)
	return out
}

// Equal reports whether both literals have the same components.
func (l Literal) Equal(other Literal) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

func (l Literal) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Graph is one node tree: the material root or the nested tree of a group.
type Graph struct {
	ID    uuid.UUID
	Name  string
	Nodes []*Node
	Links []*Link
	Owner *Node // group node owning this graph, nil for the root

	byName   map[string]*Node
	ifaceIn  []Socket
	ifaceOut []Socket
}

// Node is a unit in the graph with ordered input and output ports.
type Node struct {
	Name     string
	Label    string
	Kind     Kind
	Props    map[string]string
	Inputs   []*Port
	Outputs  []*Port
	Graph    *Graph
	Subgraph *Graph // only for KindGroup
}

// Port is a named, directed attachment point on a node.
type Port struct {
	Node       *Node
	Direction  Direction
	Name       string
	Identifier string
	DataKind   DataKind
	Default    Literal
	Index      int

	links []*Link
}

// Link connects an output port to an input port of the same graph.
type Link struct {
	From  *Port
	To    *Port
	Muted bool
}

// PortKey selects a port by stable identifier, display name or position.
// A non-empty Identifier is tried first, then a non-empty Name; Index is used
// only when both are empty.
type PortKey struct {
	Identifier string
	Name       string
	Index      int
}

// ByIdentifier builds a key that matches the stable identifier.
func ByIdentifier(id string) PortKey { return PortKey{Identifier: id} }

// ByName builds a key that matches the first port with the display name.
func ByName(name string) PortKey { return PortKey{Name: name} }

// ByIndex builds a positional key.
func ByIndex(i int) PortKey { return PortKey{Index: i} }

func (k PortKey) String() string {
	switch {
	case k.Identifier != "":
		return "#" + k.Identifier
	case k.Name != "":
		return k.Name
	default:
		return "[" + strconv.Itoa(k.Index) + "]"
	}
}

// Find returns the node with the given name, or nil if not found.
func (g *Graph) Find(name string) *Node {
	if g == nil {
		return nil
	}
	if g.byName != nil {
		return g.byName[name]
	}
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NodesOfKind returns the nodes of this graph with the given kind, in order.
func (g *Graph) NodesOfKind(kind Kind) []*Node {
	var result []*Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			result = append(result, n)
		}
	}
	return result
}

// NodesDeep returns every node of this graph followed by the nodes of nested
// group graphs, depth-first.
func (g *Graph) NodesDeep() []*Node {
	var result []*Node
	for _, n := range g.Nodes {
		result = append(result, n)
		if n.Subgraph != nil {
			result = append(result, n.Subgraph.NodesDeep()...)
		}
	}
	return result
}

// NodeNames returns all node names in sorted order for deterministic output.
func (g *Graph) NodeNames() []string {
	names := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	return names
}

// Depth is the number of group levels above this graph.
func (g *Graph) Depth() int {
	d := 0
	for o := g.Owner; o != nil; o = o.Graph.Owner {
		d++
	}
	return d
}

// QualifiedName is the node name prefixed with its owning group chain,
// e.g. "Lighting/Multiply". Root nodes return their plain name.
func (n *Node) QualifiedName() string {
	var parts []string
	for o := n.Graph.Owner; o != nil; o = o.Graph.Owner {
		parts = append([]string{o.Name}, parts...)
	}
	return strings.Join(append(parts, n.Name), "/")
}

// FindQualified resolves a name produced by QualifiedName. Every segment but
// the last must name a group node.
func (g *Graph) FindQualified(name string) *Node {
	parts := strings.Split(name, "/")
	cur := g
	for i, part := range parts {
		n := cur.Find(part)
		if n == nil {
			return nil
		}
		if i == len(parts)-1 {
			return n
		}
		if n.Subgraph == nil {
			return nil
		}
		cur = n.Subgraph
	}
	return nil
}

// Input resolves an input port by key, or nil.
func (n *Node) Input(key PortKey) *Port { return lookup(n.Inputs, key) }

// Output resolves an output port by key, or nil.
func (n *Node) Output(key PortKey) *Port { return lookup(n.Outputs, key) }

// InputByName returns the first input with the display name.
func (n *Node) InputByName(name string) *Port { return lookup(n.Inputs, ByName(name)) }

// InputByIdentifier returns the input with the stable identifier.
func (n *Node) InputByIdentifier(id string) *Port { return lookup(n.Inputs, ByIdentifier(id)) }

// OutputByName returns the first output with the display name.
func (n *Node) OutputByName(name string) *Port { return lookup(n.Outputs, ByName(name)) }

func lookup(ports []*Port, key PortKey) *Port {
	if key.Identifier != "" {
		for _, p := range ports {
			if p.Identifier == key.Identifier {
				return p
			}
		}
		if key.Name == "" {
			return nil
		}
	}
	if key.Name != "" {
		for _, p := range ports {
			if p.Name == key.Name {
				return p
			}
		}
		return nil
	}
	if key.Index < 0 || key.Index >= len(ports) {
		return nil
	}
	return ports[key.Index]
}

// Prop returns a string property, or "" when unset.
func (n *Node) Prop(key string) string {
	if n.Props == nil {
		return ""
	}
	return n.Props[key]
}

// FloatProp parses a numeric property.
func (n *Node) FloatProp(key string) (float64, bool) {
	v, err := strconv.ParseFloat(n.Prop(key), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GroupOutputMarker returns the output marker of a group's nested graph. When
// several exist the one flagged is_active_output=true wins, then the first.
func (n *Node) GroupOutputMarker() *Node {
	if n.Kind != KindGroup || n.Subgraph == nil {
		return nil
	}
	markers := n.Subgraph.NodesOfKind(KindGroupOutput)
	for _, m := range markers {
		if m.Prop("is_active_output") == "true" {
			return m
		}
	}
	if len(markers) == 0 {
		return nil
	}
	return markers[0]
}

// Link returns the single unmuted incoming link of an input port, or nil.
func (p *Port) Link() *Link {
	if p.Direction != Input {
		return nil
	}
	for _, l := range p.links {
		if !l.Muted {
			return l
		}
	}
	return nil
}

// Links returns all links attached to the port. For outputs these are the
// fan-out links in creation order.
func (p *Port) Links() []*Link {
	return p.links
}

// IsLinked reports whether the port has at least one unmuted link.
func (p *Port) IsLinked() bool {
	for _, l := range p.links {
		if !l.Muted {
			return true
		}
	}
	return false
}

// ID is a stable identity string for the port: graph ID, node name and identifier.
func (p *Port) ID() string {
	return p.Node.Graph.ID.String() + "/" + p.Node.Name + "/" + p.Direction.String() + "/" + p.Identifier
}

func (p *Port) String() string {
	return p.Node.Name + ":" + p.Name
}
