// ABOUTME: Single-cursor backward walker over material graphs with constant and factor recognition.
// ABOUTME: MoveBack chains through reroutes and group boundaries; PeekBack is its non-mutating form.
package search

import "github.com/2389-research/nodetrace/graph"

// Navigator is a cursor on a node. In is the input the next MoveBack follows;
// Out is the output the cursor arrived through. Navigators are values:
// copying one yields an independent cursor.
type Navigator struct {
	Node  *graph.Node
	Out   *graph.Port
	In    *graph.Port
	Scope Scope
	Moved bool

	maxDepth int
}

// Constant is a literal and the token locating where it is stored.
type Constant struct {
	Value graph.Literal   `json:"value" yaml:"value"`
	Path  graph.PathToken `json:"path" yaml:"path"`
}

// NewNavigator places a cursor on n with no input selected.
func NewNavigator(n *graph.Node, opts ...Option) Navigator {
	o := newOptions(opts)
	return Navigator{Node: n, Scope: o.scope, maxDepth: o.maxDepth}
}

// NavigatorAt places a cursor on the node owning in, with in selected.
func NavigatorAt(in *graph.Port, opts ...Option) Navigator {
	nav := NewNavigator(in.Node, opts...)
	nav.In = in
	return nav
}

// SelectInput makes the input matching key active. Identifiers take
// precedence over names. It reports whether a port was found; on failure the
// selection is cleared.
func (nav *Navigator) SelectInput(key graph.PortKey) bool {
	nav.In = nav.Node.Input(key)
	return nav.In != nil
}

// MoveBack follows the active input's link to the producing node, then keeps
// going through reroutes, into groups and out of input markers. Moved reports
// whether the cursor changed position. A walk longer than the depth limit
// restores the cursor and reports Moved=false.
func (nav *Navigator) MoveBack() {
	start := *nav
	nav.Moved = false
	limit := nav.maxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}

	for steps := 0; ; steps++ {
		if nav.In == nil {
			return
		}
		l := nav.In.Link()
		if l == nil {
			return
		}
		if steps >= limit {
			*nav = start
			nav.Moved = false
			return
		}

		nav.Node, nav.Out, nav.In = l.From.Node, l.From, nil
		nav.Moved = true

		switch nav.Node.Kind.Traversal() {
		case graph.PassThrough:
			if len(nav.Node.Inputs) > 0 {
				nav.In = nav.Node.Inputs[0]
			}
		case graph.GroupEnter:
			next, inner, ok := Descend(nav.Scope, nav.Out)
			if !ok {
				return
			}
			nav.Node, nav.Out, nav.In, nav.Scope = next.Node, nil, next, inner
		case graph.GroupExit:
			top, _ := nav.Scope.Top()
			next, outer, ok := Ascend(nav.Scope, nav.Out)
			if !ok {
				return
			}
			nav.Node, nav.Out, nav.In, nav.Scope = next.Node, top.Entry, next, outer
		case graph.Opaque, graph.GroupSink:
			return
		}
	}
}

// PeekBack returns a copy of the cursor after MoveBack, leaving nav untouched.
func (nav Navigator) PeekBack() Navigator {
	next := nav
	next.MoveBack()
	return next
}

// Constant reports the literal bound to the active input. An unlinked input
// yields its default value; a linked one yields the value of a value or rgb
// node one step back.
func (nav Navigator) Constant() (Constant, bool) {
	if nav.In == nil {
		return Constant{}, false
	}
	if nav.In.Link() == nil {
		if nav.In.Default == nil {
			return Constant{}, false
		}
		return Constant{Value: nav.In.Default.Clone(), Path: graph.DefaultPath(nav.In)}, true
	}

	prev := nav.PeekBack()
	if !prev.Moved || prev.Out == nil {
		return Constant{}, false
	}
	switch prev.Node.Kind {
	case graph.KindValue, graph.KindRGB:
		if prev.Out.Default == nil {
			return Constant{}, false
		}
		return Constant{Value: prev.Out.Default.Clone(), Path: graph.DefaultPath(prev.Out)}, true
	}
	return Constant{}, false
}

// Factor reports the scalar multiplying the signal on the active input: a
// constant, or the single constant operand of a multiply node one step back.
// Zero or two constant operands are ambiguous and report false. The other
// operand is not inspected; see FactorStrict.
func (nav Navigator) Factor() (Constant, bool) {
	return nav.factor(false)
}

// FactorStrict is Factor, but additionally requires the non-constant
// operand of a multiply to be linked to a producer that is not a constant node.
func (nav Navigator) FactorStrict() (Constant, bool) {
	return nav.factor(true)
}

func (nav Navigator) factor(strict bool) (Constant, bool) {
	if c, ok := nav.Constant(); ok {
		return c, true
	}
	if nav.In == nil || nav.In.Link() == nil {
		return Constant{}, false
	}

	prev := nav.PeekBack()
	if !prev.Moved {
		return Constant{}, false
	}
	a, b, ok := MultiplyOperands(prev.Node)
	if !ok {
		return Constant{}, false
	}

	navA, navB := prev, prev
	navA.In, navB.In = a, b
	ca, okA := navA.Constant()
	cb, okB := navB.Constant()

	switch {
	case okA && !okB:
		if strict && !navB.hasSignal() {
			return Constant{}, false
		}
		return ca, true
	case okB && !okA:
		if strict && !navA.hasSignal() {
			return Constant{}, false
		}
		return cb, true
	}
	return Constant{}, false
}

// hasSignal reports whether the active input is driven by a non-constant
// node. A dangling reroute or an unresolved group marker is not a signal.
func (nav Navigator) hasSignal() bool {
	prev := nav.PeekBack()
	if !prev.Moved || prev.Node.Kind.Traversal() != graph.Opaque {
		return false
	}
	switch prev.Node.Kind {
	case graph.KindValue, graph.KindRGB:
		return false
	}
	return true
}

// MultiplyOperands recognizes a multiply idiom and returns its two operand
// inputs: math or vector_math with operation=MULTIPLY, or a mix node with
// blend_type=MULTIPLY whose factor is an unlinked 1. Operands must share a
// data kind.
func MultiplyOperands(n *graph.Node) (a, b *graph.Port, ok bool) {
	if n == nil {
		return nil, nil, false
	}
	switch n.Kind {
	case graph.KindMath:
		if n.Prop("operation") != "MULTIPLY" {
			return nil, nil, false
		}
		a, b = n.InputByIdentifier("Value"), n.InputByIdentifier("Value_001")
	case graph.KindVectorMath:
		if n.Prop("operation") != "MULTIPLY" {
			return nil, nil, false
		}
		a, b = n.InputByIdentifier("Vector"), n.InputByIdentifier("Vector_001")
	case graph.KindMix:
		if n.Prop("blend_type") != "MULTIPLY" {
			return nil, nil, false
		}
		fac := n.InputByName("Factor")
		if fac == nil || fac.Link() != nil || fac.Default.Scalar() != 1 {
			return nil, nil, false
		}
		a, b = n.InputByName("A"), n.InputByName("B")
	default:
		return nil, nil, false
	}
	if a == nil || b == nil || a.DataKind != b.DataKind {
		return nil, nil, false
	}
	return a, b, true
}
