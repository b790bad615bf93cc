// ABOUTME: Exhaustive backward depth-first search from a port, collecting every node matching a predicate.
// ABOUTME: Reroutes are skipped and group boundaries crossed transparently via Descend/Ascend.
package search

import "github.com/2389-research/nodetrace/graph"

// Result is one match: the node, the links walked to reach it (nearest
// first) and the scope at the moment of the match.
type Result struct {
	Node  *graph.Node
	Path  []*graph.Link
	Scope Scope
}

// Search walks backward from start and returns every node satisfying pred.
//
// The producer of start is the port's own node for an output port, or the
// node feeding its link for an input port. When that producer already
// satisfies pred it is returned alone with an empty path. Otherwise every
// backward path is explored depth-first in link order; a match is recorded
// and the walk continues into the matched node's inputs.
//
// The graph must be acyclic along backward links. A branch that reaches a
// node already on its own path, or grows longer than the configured max
// depth, is abandoned as a non-match.
func Search(start *graph.Port, pred Predicate, opts ...Option) []Result {
	if start == nil || pred == nil {
		return nil
	}
	o := newOptions(opts)

	producer := start.Node
	if start.Direction == graph.Input {
		l := start.Link()
		if l == nil {
			return nil
		}
		producer = l.From.Node
	}
	if producer.Kind.Traversal() == graph.Opaque && pred(producer) {
		return []Result{{Node: producer, Scope: o.scope.Clone()}}
	}

	s := &searcher{pred: pred, opts: &o, origin: start.Node}
	if start.Direction == graph.Input {
		return s.fromInput(start, nil, o.scope)
	}
	return s.fromOutput(start, nil, o.scope)
}

type searcher struct {
	pred   Predicate
	opts   *options
	origin *graph.Node // node owning the start port
}

// onPath reports whether n already produced a link on path before the last
// one, the link that led to n.
func (s *searcher) onPath(n *graph.Node, path []*graph.Link) bool {
	if len(path) > 0 && n == s.origin {
		return true
	}
	for i := 0; i < len(path)-1; i++ {
		if path[i].From.Node == n {
			return true
		}
	}
	return false
}

// fromInput follows the single link feeding in, if any.
func (s *searcher) fromInput(in *graph.Port, path []*graph.Link, scope Scope) []Result {
	l := in.Link()
	if l == nil {
		return nil
	}
	next := make([]*graph.Link, len(path), len(path)+1)
	copy(next, path)
	return s.fromOutput(l.From, append(next, l), scope)
}

// fromOutput handles arriving at the producing output port out.
func (s *searcher) fromOutput(out *graph.Port, path []*graph.Link, scope Scope) []Result {
	if len(path) > s.opts.maxDepth {
		s.opts.tracef("search: depth limit %d reached at %s", s.opts.maxDepth, out)
		return nil
	}
	n := out.Node
	if s.onPath(n, path) {
		s.opts.tracef("search: cycle at %s", out)
		return nil
	}
	s.opts.tracef("search: visit node=%s kind=%s depth=%d scope=%d", n.Name, n.Kind, len(path), scope.Depth())

	switch n.Kind.Traversal() {
	case graph.PassThrough:
		if len(n.Inputs) == 0 {
			return nil
		}
		return s.fromInput(n.Inputs[0], path, scope)
	case graph.GroupEnter:
		next, inner, ok := Descend(scope, out)
		if !ok {
			return nil
		}
		return s.fromInput(next, path, inner)
	case graph.GroupExit:
		next, outer, ok := Ascend(scope, out)
		if !ok {
			return nil
		}
		return s.fromInput(next, path, outer)
	case graph.GroupSink:
		return nil
	}

	var results []Result
	if s.pred(n) {
		matched := make([]*graph.Link, len(path))
		copy(matched, path)
		results = append(results, Result{Node: n, Path: matched, Scope: scope.Clone()})
	}
	for _, in := range n.Inputs {
		results = append(results, s.fromInput(in, path, scope)...)
	}
	return results
}
