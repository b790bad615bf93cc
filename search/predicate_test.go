// ABOUTME: Tests for node predicates and their combinators.
// ABOUTME: Table-driven over a handful of catalog nodes.
package search

import (
	"testing"

	"github.com/2389-research/nodetrace/graph"
)

func TestPredicates(t *testing.T) {
	g := graph.New("mat")
	tex := add(t, g, graph.KindImageTexture, "Tex")
	val := add(t, g, graph.KindValue, "Val")

	tests := []struct {
		name string
		pred Predicate
		node *graph.Node
		want bool
	}{
		{"kind match", ByKind(graph.KindImageTexture), tex, true},
		{"kind mismatch", ByKind(graph.KindImageTexture), val, false},
		{"name match", ByName("Val"), val, true},
		{"name mismatch", ByName("Val"), tex, false},
		{"any", Any(), tex, true},
		{"and both", And(ByKind(graph.KindValue), ByName("Val")), val, true},
		{"and one", And(ByKind(graph.KindValue), ByName("Other")), val, false},
		{"and empty", And(), val, true},
		{"or one", Or(ByName("Other"), ByName("Tex")), tex, true},
		{"or none", Or(ByName("Other")), tex, false},
		{"or empty", Or(), tex, false},
		{"not", Not(ByKind(graph.KindValue)), tex, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.node); got != tt.want {
				t.Errorf("predicate(%s) = %v, want %v", tt.node.Name, got, tt.want)
			}
		})
	}
}
