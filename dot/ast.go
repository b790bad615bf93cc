// ABOUTME: AST types for DOT material graph sources: scoped graphs, nodes, port-qualified edges.
// ABOUTME: Each subgraph is its own node namespace and becomes a group node when built.
package dot

import "sort"

// Graph is a parsed digraph or subgraph scope with its nodes, edges and attributes.
type Graph struct {
	Name         string
	Nodes        map[string]*Node
	NodeOrder    []string          // node IDs in first-mention order
	Edges        []*Edge
	Attrs        map[string]string // graph or subgraph attributes
	NodeDefaults map[string]string // node [...] defaults
	EdgeDefaults map[string]string // edge [...] defaults
	Subgraphs    []*Graph
}

// Node is a node statement with an ID and key-value attributes.
type Node struct {
	ID    string
	Attrs map[string]string
}

// Edge is a directed edge between optional ports of two nodes.
type Edge struct {
	From     string
	FromPort string
	To       string
	ToPort   string
	Attrs    map[string]string
}

// Diagnostic is a validation finding associated with a node or link.
type Diagnostic struct {
	Severity string `json:"severity" yaml:"severity"` // "error", "warning", "info"
	Message  string `json:"message" yaml:"message"`
	NodeID   string `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	EdgeID   string `json:"edge_id,omitempty" yaml:"edge_id,omitempty"`
	Rule     string `json:"rule" yaml:"rule"`
}

func newGraph(name string) *Graph {
	return &Graph{
		Name:         name,
		Nodes:        make(map[string]*Node),
		Attrs:        make(map[string]string),
		NodeDefaults: make(map[string]string),
		EdgeDefaults: make(map[string]string),
	}
}

// AddNode adds a node to the scope, initializing the Nodes map if needed.
func (g *Graph) AddNode(n *Node) {
	if g.Nodes == nil {
		g.Nodes = make(map[string]*Node)
	}
	if _, exists := g.Nodes[n.ID]; !exists {
		g.NodeOrder = append(g.NodeOrder, n.ID)
	}
	g.Nodes[n.ID] = n
}

// AddEdge appends an edge to the scope.
func (g *Graph) AddEdge(e *Edge) {
	g.Edges = append(g.Edges, e)
}

// FindNode returns the node with the given ID, or nil if not found.
func (g *Graph) FindNode(id string) *Node {
	if g.Nodes == nil {
		return nil
	}
	return g.Nodes[id]
}

// FindSubgraph returns the nested scope with the given name, or nil.
func (g *Graph) FindSubgraph(name string) *Graph {
	for _, sg := range g.Subgraphs {
		if sg.Name == name {
			return sg
		}
	}
	return nil
}

// NodeIDs returns all node IDs in sorted order for deterministic output.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
