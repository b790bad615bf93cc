// ABOUTME: Graph fixtures shared by the search tests: texture factor chain, Lighting group, reroutes.
// ABOUTME: Built with the graph builder so the tests do not depend on a file format.
package search

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/2389-research/nodetrace/graph"
)

// pointerIdentity compares graph pointers by identity instead of walking them.
var pointerIdentity = cmp.Options{
	cmp.Comparer(func(a, b *graph.Node) bool { return a == b }),
	cmp.Comparer(func(a, b *graph.Port) bool { return a == b }),
	cmp.Comparer(func(a, b *graph.Link) bool { return a == b }),
}

func add(t *testing.T, g *graph.Graph, kind graph.Kind, name string, props ...string) *graph.Node {
	t.Helper()
	n, err := g.AddNode(kind, name)
	if err != nil {
		t.Fatalf("AddNode(%v, %q): %v", kind, name, err)
	}
	for i := 0; i+1 < len(props); i += 2 {
		n.Props[props[i]] = props[i+1]
	}
	return n
}

func link(t *testing.T, g *graph.Graph, from, to *graph.Port) *graph.Link {
	t.Helper()
	if from == nil || to == nil {
		t.Fatalf("link: nil port (%v -> %v)", from, to)
	}
	l, err := g.Connect(from, to)
	if err != nil {
		t.Fatalf("Connect(%s, %s): %v", from, to, err)
	}
	return l
}

// textureFactor builds ImageSample x ConstantFactor[0.7] -> BSDF.Roughness.
type textureFactor struct {
	g        *graph.Graph
	image    *graph.Node
	constant *graph.Node
	multiply *graph.Node
	bsdf     *graph.Node
}

func newTextureFactor(t *testing.T) *textureFactor {
	t.Helper()
	g := graph.New("Painted")
	f := &textureFactor{
		g:        g,
		image:    add(t, g, graph.KindImageTexture, "ImageSample", "image", "wood.png"),
		constant: add(t, g, graph.KindValue, "ConstantFactor"),
		multiply: add(t, g, graph.KindMath, "Multiply", "operation", "MULTIPLY"),
		bsdf:     add(t, g, graph.KindPrincipledBSDF, "Principled BSDF"),
	}
	f.constant.Outputs[0].Default = graph.Literal{0.7}
	link(t, g, f.image.OutputByName("Color"), f.multiply.InputByIdentifier("Value"))
	link(t, g, f.constant.Outputs[0], f.multiply.InputByIdentifier("Value_001"))
	link(t, g, f.multiply.Outputs[0], f.bsdf.InputByName("Roughness"))
	return f
}

// lighting builds an outer group "Lighting" whose Color output is
// ConstantA[2.0] x ConstantB[0.5] and whose Tint input passes through a mix.
type lighting struct {
	g      *graph.Graph
	group  *graph.Node
	tint   *graph.Node
	bsdf   *graph.Node
	inner  *graph.Graph
	a, b   *graph.Node
	mul    *graph.Node
	mix    *graph.Node
	input  *graph.Node
	output *graph.Node
}

func newLighting(t *testing.T) *lighting {
	t.Helper()
	sub := graph.New("Lighting")
	sub.SetInterface(
		[]graph.Socket{{Name: "Tint", DataKind: graph.DataColor, Default: graph.Literal{1, 1, 1, 1}}},
		[]graph.Socket{{Name: "Color", DataKind: graph.DataColor}, {Name: "Tinted", DataKind: graph.DataColor}},
	)
	l := &lighting{
		inner:  sub,
		input:  add(t, sub, graph.KindGroupInput, "Group Input"),
		output: add(t, sub, graph.KindGroupOutput, "Group Output"),
		a:      add(t, sub, graph.KindValue, "ConstantA"),
		b:      add(t, sub, graph.KindValue, "ConstantB"),
		mul:    add(t, sub, graph.KindMath, "Multiply", "operation", "MULTIPLY"),
		mix:    add(t, sub, graph.KindMix, "Mix"),
	}
	l.a.Outputs[0].Default = graph.Literal{2.0}
	l.b.Outputs[0].Default = graph.Literal{0.5}
	link(t, sub, l.a.Outputs[0], l.mul.InputByIdentifier("Value"))
	link(t, sub, l.b.Outputs[0], l.mul.InputByIdentifier("Value_001"))
	link(t, sub, l.mul.Outputs[0], l.output.InputByName("Color"))
	link(t, sub, l.input.OutputByName("Tint"), l.mix.InputByName("A"))
	link(t, sub, l.mix.Outputs[0], l.output.InputByName("Tinted"))

	g := graph.New("Lit")
	group, err := g.AddGroup("Lighting", sub)
	if err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	l.g, l.group = g, group
	l.tint = add(t, g, graph.KindRGB, "TintColor")
	l.bsdf = add(t, g, graph.KindPrincipledBSDF, "Principled BSDF")
	link(t, g, l.tint.Outputs[0], group.InputByName("Tint"))
	link(t, g, group.OutputByName("Color"), l.bsdf.InputByName("Base Color"))
	link(t, g, group.OutputByName("Tinted"), l.bsdf.InputByName("Emission Color"))
	return l
}

// rerouteChain links from through n reroutes into to and returns the reroutes.
func rerouteChain(t *testing.T, g *graph.Graph, from, to *graph.Port, n int) []*graph.Node {
	t.Helper()
	var reroutes []*graph.Node
	prev := from
	for i := 0; i < n; i++ {
		r := add(t, g, graph.KindReroute, fmt.Sprintf("Reroute.%03d", i))
		link(t, g, prev, r.Inputs[0])
		prev = r.Outputs[0]
		reroutes = append(reroutes, r)
	}
	link(t, g, prev, to)
	return reroutes
}

func names(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Node.Name
	}
	return out
}
