// ABOUTME: Composable node predicates used by backward search.
// ABOUTME: ByKind and ByName match single nodes; And/Or/Not combine them.
package search

import "github.com/2389-research/nodetrace/graph"

// Predicate tests a node. Predicates are total and never fail.
type Predicate func(*graph.Node) bool

// ByKind matches nodes whose concrete kind equals kind.
func ByKind(kind graph.Kind) Predicate {
	return func(n *graph.Node) bool { return n.Kind == kind }
}

// ByName matches nodes whose declared name equals name.
func ByName(name string) Predicate {
	return func(n *graph.Node) bool { return n.Name == name }
}

// Any matches every node.
func Any() Predicate {
	return func(*graph.Node) bool { return true }
}

// And matches when every predicate matches.
func And(preds ...Predicate) Predicate {
	return func(n *graph.Node) bool {
		for _, p := range preds {
			if !p(n) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one predicate matches.
func Or(preds ...Predicate) Predicate {
	return func(n *graph.Node) bool {
		for _, p := range preds {
			if p(n) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(n *graph.Node) bool { return !p(n) }
}
