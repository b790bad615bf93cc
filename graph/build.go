// ABOUTME: Builder operations for material graphs: nodes, group interfaces, groups and links.
// ABOUTME: The builder is the only mutation surface; search and extract treat graphs as read-only.
package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// Socket declares one port of a group interface.
type Socket struct {
	Name     string
	DataKind DataKind
	Default  Literal
}

// New creates an empty graph with a fresh ID.
func New(name string) *Graph {
	return &Graph{
		ID:     uuid.New(),
		Name:   name,
		byName: make(map[string]*Node),
	}
}

// AddNode creates a node of the given kind with its catalog ports. Group
// nodes are created with AddGroup instead.
func (g *Graph) AddNode(kind Kind, name string) (*Node, error) {
	if kind == KindGroup {
		return nil, fmt.Errorf("node %q: group nodes need a nested graph, use AddGroup", name)
	}
	n, err := g.newNode(kind, name)
	if err != nil {
		return nil, err
	}
	instantiate(n)
	switch kind {
	case KindGroupInput:
		for _, s := range g.interfaceIn() {
			n.AddOutput(s.Name, "", s.DataKind, s.Default.Clone())
		}
	case KindGroupOutput:
		for _, s := range g.interfaceOut() {
			n.AddInput(s.Name, "", s.DataKind, s.Default.Clone())
		}
	}
	return n, nil
}

// AddGroup creates a group node owning sub. The group's inputs mirror the
// outputs of sub's input marker and its outputs mirror the inputs of sub's
// output marker.
func (g *Graph) AddGroup(name string, sub *Graph) (*Node, error) {
	if sub == nil {
		return nil, fmt.Errorf("group %q: nested graph is nil", name)
	}
	if sub.Owner != nil {
		return nil, fmt.Errorf("group %q: graph %q already owned by %q", name, sub.Name, sub.Owner.Name)
	}
	n, err := g.newNode(KindGroup, name)
	if err != nil {
		return nil, err
	}
	n.Subgraph = sub
	sub.Owner = n
	for _, s := range sub.interfaceIn() {
		n.AddInput(s.Name, "", s.DataKind, s.Default.Clone())
	}
	for _, s := range sub.interfaceOut() {
		n.AddOutput(s.Name, "", s.DataKind, s.Default.Clone())
	}
	return n, nil
}

func (g *Graph) newNode(kind Kind, name string) (*Node, error) {
	if name == "" {
		return nil, fmt.Errorf("node name must not be empty")
	}
	if g.Find(name) != nil {
		return nil, fmt.Errorf("node %q already exists in graph %q", name, g.Name)
	}
	n := &Node{
		Name:  name,
		Kind:  kind,
		Props: make(map[string]string),
		Graph: g,
	}
	g.Nodes = append(g.Nodes, n)
	if g.byName == nil {
		g.byName = make(map[string]*Node)
	}
	g.byName[name] = n
	return n, nil
}

// SetInterface declares the group sockets of a graph nested in a group.
// Markers already present get their ports; markers added later get them from
// AddNode. When the graph is already owned, the group node gains the new
// sockets too so its ports keep matching the markers by name. Existing ports
// are never removed.
func (g *Graph) SetInterface(inputs, outputs []Socket) {
	g.ifaceIn = inputs
	g.ifaceOut = outputs
	for _, m := range g.NodesOfKind(KindGroupInput) {
		addMissing(m, Output, inputs)
	}
	for _, m := range g.NodesOfKind(KindGroupOutput) {
		addMissing(m, Input, outputs)
	}
	if g.Owner != nil {
		addMissing(g.Owner, Input, inputs)
		addMissing(g.Owner, Output, outputs)
	}
}

// addMissing adds a port on n for every socket whose name n lacks.
func addMissing(n *Node, dir Direction, sockets []Socket) {
	for _, s := range sockets {
		if dir == Input && n.InputByName(s.Name) == nil {
			n.AddInput(s.Name, "", s.DataKind, s.Default.Clone())
		}
		if dir == Output && n.OutputByName(s.Name) == nil {
			n.AddOutput(s.Name, "", s.DataKind, s.Default.Clone())
		}
	}
}

// Interface returns the declared group sockets.
func (g *Graph) Interface() (inputs, outputs []Socket) {
	return g.ifaceIn, g.ifaceOut
}

func (g *Graph) interfaceIn() []Socket  { return g.ifaceIn }
func (g *Graph) interfaceOut() []Socket { return g.ifaceOut }

// AddInput appends an input port. An empty identifier is derived from the
// name, suffixed _001, _002... when it collides.
func (n *Node) AddInput(name, identifier string, dk DataKind, def Literal) *Port {
	p := n.newPort(Input, n.Inputs, name, identifier, dk, def)
	n.Inputs = append(n.Inputs, p)
	return p
}

// AddOutput appends an output port, with the same identifier rule as AddInput.
func (n *Node) AddOutput(name, identifier string, dk DataKind, def Literal) *Port {
	p := n.newPort(Output, n.Outputs, name, identifier, dk, def)
	n.Outputs = append(n.Outputs, p)
	return p
}

func (n *Node) newPort(dir Direction, existing []*Port, name, identifier string, dk DataKind, def Literal) *Port {
	if identifier == "" {
		identifier = uniqueIdentifier(existing, name)
	}
	if dk == "" {
		dk = DataOpaque
	}
	return &Port{
		Node:       n,
		Direction:  dir,
		Name:       name,
		Identifier: identifier,
		DataKind:   dk,
		Default:    def,
		Index:      len(existing),
	}
}

func uniqueIdentifier(ports []*Port, base string) string {
	taken := make(map[string]bool, len(ports))
	for _, p := range ports {
		taken[p.Identifier] = true
	}
	if !taken[base] {
		return base
	}
	for i := 1; ; i++ {
		id := fmt.Sprintf("%s_%03d", base, i)
		if !taken[id] {
			return id
		}
	}
}

// Connect links an output port to an input port of this graph. An existing
// link into the input is replaced.
func (g *Graph) Connect(from, to *Port) (*Link, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("connect: nil port")
	}
	if from.Direction != Output {
		return nil, fmt.Errorf("connect %s: source must be an output port", from)
	}
	if to.Direction != Input {
		return nil, fmt.Errorf("connect %s: destination must be an input port", to)
	}
	if from.Node.Graph != g || to.Node.Graph != g {
		return nil, fmt.Errorf("connect %s -> %s: both ports must belong to graph %q", from, to, g.Name)
	}

	for _, old := range append([]*Link(nil), to.links...) {
		g.removeLink(old)
	}

	l := &Link{From: from, To: to}
	from.links = append(from.links, l)
	to.links = []*Link{l}
	g.Links = append(g.Links, l)
	return l, nil
}

// ConnectNames resolves "node:port" style references and links them. Ports
// are looked up by identifier first, then by display name.
func (g *Graph) ConnectNames(fromNode, fromPort, toNode, toPort string) (*Link, error) {
	src := g.Find(fromNode)
	if src == nil {
		return nil, fmt.Errorf("link source node %q not found in graph %q", fromNode, g.Name)
	}
	dst := g.Find(toNode)
	if dst == nil {
		return nil, fmt.Errorf("link destination node %q not found in graph %q", toNode, g.Name)
	}
	out := resolvePort(src.Outputs, fromPort)
	if out == nil {
		return nil, fmt.Errorf("node %q has no output %q", fromNode, fromPort)
	}
	inp := resolvePort(dst.Inputs, toPort)
	if inp == nil {
		return nil, fmt.Errorf("node %q has no input %q", toNode, toPort)
	}
	return g.Connect(out, inp)
}

// resolvePort looks up a port reference by identifier, then name. An empty
// reference selects the first port.
func resolvePort(ports []*Port, ref string) *Port {
	if ref == "" {
		return lookup(ports, ByIndex(0))
	}
	if p := lookup(ports, ByIdentifier(ref)); p != nil {
		return p
	}
	return lookup(ports, ByName(ref))
}

func (g *Graph) removeLink(l *Link) {
	g.Links = deleteLink(g.Links, l)
	l.From.links = deleteLink(l.From.links, l)
	l.To.links = deleteLink(l.To.links, l)
}

func deleteLink(links []*Link, target *Link) []*Link {
	out := links[:0]
	for _, l := range links {
		if l != target {
			out = append(out, l)
		}
	}
	return out
}
