// ABOUTME: Group scope stack: frames recording which group subgraphs a walk is inside.
// ABOUTME: Descend enters a group through its output marker; Ascend leaves through an input marker.
package search

import "github.com/2389-research/nodetrace/graph"

// Frame records one level of group nesting: the group node and the output
// port the walk entered it through.
type Frame struct {
	Group *graph.Node
	Entry *graph.Port
}

// Scope is a LIFO stack of frames, innermost last. Push and Pop never modify
// the receiver's backing array, so a scope can be shared between branches.
type Scope []Frame

// Depth is the number of groups the walk is inside.
func (s Scope) Depth() int { return len(s) }

// Top returns the innermost frame.
func (s Scope) Top() (Frame, bool) {
	if len(s) == 0 {
		return Frame{}, false
	}
	return s[len(s)-1], true
}

// Push returns a new scope with f on top.
func (s Scope) Push(f Frame) Scope {
	out := make(Scope, len(s), len(s)+1)
	copy(out, s)
	return append(out, f)
}

// Pop returns the innermost frame and the scope without it.
func (s Scope) Pop() (Frame, Scope, bool) {
	switch len(s) {
	case 0:
		return Frame{}, s, false
	case 1:
		return s[0], nil, true
	}
	return s[len(s)-1], s[:len(s)-1:len(s)-1], true
}

// Clone returns an independent copy.
func (s Scope) Clone() Scope {
	if s == nil {
		return nil
	}
	out := make(Scope, len(s))
	copy(out, s)
	return out
}

// Groups lists the group nodes from outermost to innermost.
func (s Scope) Groups() []*graph.Node {
	groups := make([]*graph.Node, len(s))
	for i, f := range s {
		groups[i] = f.Group
	}
	return groups
}

// Descend enters the group that owns out. It returns the input of the
// group's output marker named like out, and the scope with the group pushed.
// When out is not a group output, or the nested graph has no matching
// marker input, it returns ok=false and the scope unchanged.
func Descend(scope Scope, out *graph.Port) (next *graph.Port, inner Scope, ok bool) {
	if out == nil || out.Direction != graph.Output || out.Node.Kind != graph.KindGroup {
		return nil, scope, false
	}
	marker := out.Node.GroupOutputMarker()
	if marker == nil {
		return nil, scope, false
	}
	next = marker.InputByName(out.Name)
	if next == nil {
		return nil, scope, false
	}
	return next, scope.Push(Frame{Group: out.Node, Entry: out}), true
}

// Ascend leaves the innermost group through an input marker output. It
// returns the input of the popped group named like out, and the outer scope.
// With an empty scope or no matching group input it returns ok=false and the
// scope unchanged.
func Ascend(scope Scope, out *graph.Port) (next *graph.Port, outer Scope, ok bool) {
	if out == nil || out.Direction != graph.Output || out.Node.Kind != graph.KindGroupInput {
		return nil, scope, false
	}
	top, rest, ok := scope.Pop()
	if !ok {
		return nil, scope, false
	}
	next = top.Group.InputByName(out.Name)
	if next == nil {
		return nil, scope, false
	}
	return next, rest, true
}
