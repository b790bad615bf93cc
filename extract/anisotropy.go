// ABOUTME: Anisotropy extractor: matches the fixed node chain that encodes an anisotropy texture.
// ABOUTME: All-or-nothing; any step whose shape differs makes the whole idiom absent.
package extract

import (
	"math"

	"github.com/2389-research/nodetrace/graph"
	"github.com/2389-research/nodetrace/search"
)

const literalTolerance = 1e-4

// AnisotropyData describes a recognized anisotropy setup on a principled BSDF.
type AnisotropyData struct {
	UVMap    string          `json:"uv_map" yaml:"uv_map"`
	Texture  *graph.Node     `json:"-" yaml:"-"`
	Image    string          `json:"image" yaml:"image"`
	Strength search.Constant `json:"strength" yaml:"strength"`
	Rotation search.Constant `json:"rotation" yaml:"rotation"`
}

// Anisotropy matches the anisotropy idiom on bsdf:
//
//	Tangent              <- tangent(direction_type=UV_MAP)
//	Anisotropic          <- math MULTIPLY(const, separate_xyz.Z)
//	Anisotropic Rotation <- math DIVIDE(math ADD(const, math ARCTANGENT2(Y, X)), 2π)
//
// where both separate_xyz nodes read the same vector_math MULTIPLY_ADD with
// multiplier (2,2,2) and addend (-1,-1,-1) applied to an image texture with a
// bound image.
func Anisotropy(bsdf *graph.Node, ctx *ExportContext) *AnisotropyData {
	if bsdf == nil || bsdf.Kind != graph.KindPrincipledBSDF {
		return nil
	}
	root := search.NewNavigator(bsdf, ctx.options()...)

	uvMap, ok := tangentUVMap(root)
	if !ok {
		return nil
	}
	strength, normalize, tex, ok := anisotropyStrength(root)
	if !ok {
		return nil
	}
	rotation, ok := anisotropyRotation(root, normalize)
	if !ok {
		return nil
	}
	return &AnisotropyData{
		UVMap:    uvMap,
		Texture:  tex,
		Image:    tex.Prop("image"),
		Strength: strength,
		Rotation: rotation,
	}
}

func tangentUVMap(root search.Navigator) (string, bool) {
	prev, ok := stepBack(root, graph.ByName("Tangent"))
	if !ok || prev.Node.Kind != graph.KindTangent || prev.Node.Prop("direction_type") != "UV_MAP" {
		return "", false
	}
	return prev.Node.Prop("uv_map"), true
}

// anisotropyStrength returns the strength factor, the normalizing vector_math
// node and the sampled image texture.
func anisotropyStrength(root search.Navigator) (search.Constant, *graph.Node, *graph.Node, bool) {
	mul, ok := stepBack(root, graph.ByName("Anisotropic"))
	if !ok || !isMath(mul.Node, "MULTIPLY") {
		return search.Constant{}, nil, nil, false
	}
	factor, signal, ok := oneConstant(mul, "Value", "Value_001")
	if !ok {
		return search.Constant{}, nil, nil, false
	}
	normalize, ok := channelSource(signal, "Z")
	if !ok {
		return search.Constant{}, nil, nil, false
	}
	tex, ok := stepBack(normalize, graph.ByIdentifier("Vector"))
	if !ok || !HasImage(tex.Node) {
		return search.Constant{}, nil, nil, false
	}
	return factor, normalize.Node, tex.Node, true
}

func anisotropyRotation(root search.Navigator, normalize *graph.Node) (search.Constant, bool) {
	div, ok := stepBack(root, graph.ByName("Anisotropic Rotation"))
	if !ok || !isMath(div.Node, "DIVIDE") {
		return search.Constant{}, false
	}
	divisor := div
	if !divisor.SelectInput(graph.ByIdentifier("Value_001")) {
		return search.Constant{}, false
	}
	c, ok := divisor.Constant()
	if !ok || !approx(c.Value.Scalar(), 2*math.Pi) {
		return search.Constant{}, false
	}

	add, ok := stepBack(div, graph.ByIdentifier("Value"))
	if !ok || !isMath(add.Node, "ADD") {
		return search.Constant{}, false
	}
	offset, signal, ok := oneConstant(add, "Value", "Value_001")
	if !ok || !isMath(signal.Node, "ARCTANGENT2") {
		return search.Constant{}, false
	}

	for _, ch := range []struct{ input, channel string }{{"Value", "Y"}, {"Value_001", "X"}} {
		sep, ok := stepBack(signal, graph.ByIdentifier(ch.input))
		if !ok {
			return search.Constant{}, false
		}
		src, ok := channelSource(sep, ch.channel)
		if !ok || src.Node != normalize {
			return search.Constant{}, false
		}
	}
	return offset, true
}

// channelSource checks that nav sits on a separate_xyz node reached through
// the given channel output, and returns the normalizing vector_math node
// feeding it.
func channelSource(nav search.Navigator, channel string) (search.Navigator, bool) {
	if nav.Node.Kind != graph.KindSeparateXYZ || nav.Out == nil || nav.Out.Identifier != channel {
		return search.Navigator{}, false
	}
	src, ok := stepBack(nav, graph.ByIdentifier("Vector"))
	if !ok || src.Node.Kind != graph.KindVectorMath || src.Node.Prop("operation") != "MULTIPLY_ADD" {
		return search.Navigator{}, false
	}
	if !constantEquals(src, "Vector_001", 2, 2, 2) || !constantEquals(src, "Vector_002", -1, -1, -1) {
		return search.Navigator{}, false
	}
	return src, true
}

// oneConstant inspects the two operand inputs of nav's node. Exactly one must
// be constant; it returns that constant and the node feeding the other.
func oneConstant(nav search.Navigator, a, b string) (search.Constant, search.Navigator, bool) {
	na, nb := nav, nav
	if !na.SelectInput(graph.ByIdentifier(a)) || !nb.SelectInput(graph.ByIdentifier(b)) {
		return search.Constant{}, search.Navigator{}, false
	}
	ca, okA := na.Constant()
	cb, okB := nb.Constant()

	var c search.Constant
	var other search.Navigator
	switch {
	case okA && !okB:
		c, other = ca, nb
	case okB && !okA:
		c, other = cb, na
	default:
		return search.Constant{}, search.Navigator{}, false
	}
	other.MoveBack()
	if !other.Moved {
		return search.Constant{}, search.Navigator{}, false
	}
	return c, other, true
}

// stepBack selects key on nav's node and returns the cursor one step back.
func stepBack(nav search.Navigator, key graph.PortKey) (search.Navigator, bool) {
	if !nav.SelectInput(key) {
		return search.Navigator{}, false
	}
	prev := nav.PeekBack()
	return prev, prev.Moved
}

func constantEquals(nav search.Navigator, identifier string, want ...float64) bool {
	if !nav.SelectInput(graph.ByIdentifier(identifier)) {
		return false
	}
	c, ok := nav.Constant()
	if !ok || len(c.Value) < len(want) {
		return false
	}
	for i, w := range want {
		if !approx(c.Value[i], w) {
			return false
		}
	}
	return true
}

func isMath(n *graph.Node, op string) bool {
	return n.Kind == graph.KindMath && n.Prop("operation") == op
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= literalTolerance
}
