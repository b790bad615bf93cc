// ABOUTME: Graph-building helpers for the extractor tests, including the full anisotropy chain.
// ABOUTME: Each builder returns the nodes the assertions refer to.
package extract

import (
	"math"
	"testing"

	"github.com/2389-research/nodetrace/graph"
)

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

func link(t *testing.T, g *graph.Graph, from, to *graph.Port) {
	t.Helper()
	if from == nil || to == nil {
		t.Fatalf("link: nil port (%v -> %v)", from, to)
	}
	if _, err := g.Connect(from, to); err != nil {
		t.Fatalf("Connect(%s, %s): %v", from, to, err)
	}
}

type anisoChain struct {
	g        *graph.Graph
	bsdf     *graph.Node
	tangent  *graph.Node
	tex      *graph.Node
	norm     *graph.Node
	sepZ     *graph.Node
	sepXY    *graph.Node
	strength *graph.Node
	atan     *graph.Node
	offset   *graph.Node
	divide   *graph.Node
}

func newAnisoChain(t *testing.T) *anisoChain {
	t.Helper()
	g := graph.New("Brushed")
	c := &anisoChain{
		g:        g,
		bsdf:     add(t, g, graph.KindPrincipledBSDF, "Principled BSDF"),
		tangent:  add(t, g, graph.KindTangent, "Tangent", "direction_type", "UV_MAP", "uv_map", "UVMap"),
		tex:      add(t, g, graph.KindImageTexture, "AnisoTex", "image", "aniso.png"),
		norm:     add(t, g, graph.KindVectorMath, "Normalize", "operation", "MULTIPLY_ADD"),
		sepZ:     add(t, g, graph.KindSeparateXYZ, "SeparateStrength"),
		sepXY:    add(t, g, graph.KindSeparateXYZ, "SeparateDirection"),
		strength: add(t, g, graph.KindMath, "StrengthMul", "operation", "MULTIPLY"),
		atan:     add(t, g, graph.KindMath, "Angle", "operation", "ARCTANGENT2"),
		offset:   add(t, g, graph.KindMath, "RotationAdd", "operation", "ADD"),
		divide:   add(t, g, graph.KindMath, "RotationDiv", "operation", "DIVIDE"),
	}
	c.norm.InputByIdentifier("Vector_001").Default = graph.Literal{2, 2, 2}
	c.norm.InputByIdentifier("Vector_002").Default = graph.Literal{-1, -1, -1}
	c.strength.InputByIdentifier("Value_001").Default = graph.Literal{0.8}
	c.offset.InputByIdentifier("Value_001").Default = graph.Literal{0.25}
	c.divide.InputByIdentifier("Value_001").Default = graph.Literal{2 * math.Pi}

	link(t, g, c.tangent.Outputs[0], c.bsdf.InputByName("Tangent"))
	link(t, g, c.tex.OutputByName("Color"), c.norm.InputByIdentifier("Vector"))
	link(t, g, c.norm.OutputByName("Vector"), c.sepZ.InputByName("Vector"))
	link(t, g, c.norm.OutputByName("Vector"), c.sepXY.InputByName("Vector"))
	link(t, g, c.sepZ.OutputByName("Z"), c.strength.InputByIdentifier("Value"))
	link(t, g, c.strength.Outputs[0], c.bsdf.InputByName("Anisotropic"))
	link(t, g, c.sepXY.OutputByName("Y"), c.atan.InputByIdentifier("Value"))
	link(t, g, c.sepXY.OutputByName("X"), c.atan.InputByIdentifier("Value_001"))
	link(t, g, c.atan.Outputs[0], c.offset.InputByIdentifier("Value"))
	link(t, g, c.offset.Outputs[0], c.divide.InputByIdentifier("Value"))
	link(t, g, c.divide.Outputs[0], c.bsdf.InputByName("Anisotropic Rotation"))
	return c
}
