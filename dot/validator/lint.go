// ABOUTME: Lint rules for loaded material graphs: group structure, backward cycles, idiom shapes.
// ABOUTME: Provides a single Lint(g) function that walks the root and every nested group graph.
package validator

import (
	"fmt"

	"github.com/2389-research/nodetrace/dot"
	"github.com/2389-research/nodetrace/graph"
)

// knownOperations lists math and vector_math operations the extractors
// understand or that commonly appear in exported materials.
var knownOperations = map[graph.Kind]map[string]bool{
	graph.KindMath: {
		"ADD": true, "SUBTRACT": true, "MULTIPLY": true, "DIVIDE": true, "MULTIPLY_ADD": true,
		"POWER": true, "MINIMUM": true, "MAXIMUM": true, "ARCTANGENT2": true, "ABSOLUTE": true,
		"SINE": true, "COSINE": true, "ARCTANGENT": true, "ROUND": true, "FLOOR": true,
	},
	graph.KindVectorMath: {
		"ADD": true, "SUBTRACT": true, "MULTIPLY": true, "DIVIDE": true, "MULTIPLY_ADD": true,
		"SCALE": true, "NORMALIZE": true, "DOT_PRODUCT": true, "CROSS_PRODUCT": true, "LENGTH": true,
	},
}

// validBlendTypes is the set of recognized mix blend_type values.
var validBlendTypes = map[string]bool{
	"MIX": true, "MULTIPLY": true, "ADD": true, "SUBTRACT": true, "SCREEN": true,
	"DIVIDE": true, "DIFFERENCE": true, "DARKEN": true, "LIGHTEN": true, "OVERLAY": true,
}

// Lint runs all lint rules on the graph and returns any diagnostics found.
// Nested group graphs are linted too; their node IDs are qualified with the
// group chain ("Lighting/Multiply").
func Lint(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	diags = append(diags, checkMaterialOutput(g)...)
	diags = append(diags, lintGraph(g)...)
	return diags
}

func lintGraph(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic

	diags = append(diags, checkBackwardCycles(g)...)
	diags = append(diags, checkGroupMarkers(g)...)
	diags = append(diags, checkInterfacePorts(g)...)
	diags = append(diags, checkImages(g)...)
	diags = append(diags, checkOperations(g)...)
	diags = append(diags, checkMixMultiply(g)...)
	diags = append(diags, checkTangentUVMap(g)...)
	diags = append(diags, checkAttributeType(g)...)
	diags = append(diags, checkMutedLinks(g)...)
	diags = append(diags, checkDataKinds(g)...)

	for _, n := range g.Nodes {
		if n.Subgraph != nil {
			diags = append(diags, lintGraph(n.Subgraph)...)
		}
	}
	return diags
}

func edgeID(l *graph.Link) string {
	return fmt.Sprintf("%s:%s->%s:%s", l.From.Node.QualifiedName(), l.From.Identifier, l.To.Node.QualifiedName(), l.To.Identifier)
}

// checkMaterialOutput verifies the root graph has a material output node.
func checkMaterialOutput(g *graph.Graph) []dot.Diagnostic {
	if len(g.NodesOfKind(graph.KindMaterialOutput)) > 0 {
		return nil
	}
	return []dot.Diagnostic{{
		Severity: "warning",
		Message:  fmt.Sprintf("material %q has no material_output node", g.Name),
		Rule:     "material_output",
	}}
}

// checkBackwardCycles reports links that close a cycle when walked backward.
// Search and the navigator assume acyclic graphs.
func checkBackwardCycles(g *graph.Graph) []dot.Diagnostic {
	const (
		white = iota
		grey
		black
	)
	color := make(map[*graph.Node]int, len(g.Nodes))
	var diags []dot.Diagnostic

	var visit func(n *graph.Node)
	visit = func(n *graph.Node) {
		color[n] = grey
		for _, in := range n.Inputs {
			l := in.Link()
			if l == nil {
				continue
			}
			src := l.From.Node
			switch color[src] {
			case grey:
				diags = append(diags, dot.Diagnostic{
					Severity: "error",
					Message:  fmt.Sprintf("link %s -> %s closes a backward cycle", l.From, l.To),
					NodeID:   n.QualifiedName(),
					EdgeID:   edgeID(l),
					Rule:     "backward_cycle",
				})
			case white:
				visit(src)
			}
		}
		color[n] = black
	}

	for _, n := range g.Nodes {
		if color[n] == white {
			visit(n)
		}
	}
	return diags
}

// checkGroupMarkers verifies that a group's nested graph has the marker
// nodes its interface requires.
func checkGroupMarkers(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, n := range g.NodesOfKind(graph.KindGroup) {
		if n.GroupOutputMarker() == nil {
			diags = append(diags, dot.Diagnostic{
				Severity: "error",
				Message:  fmt.Sprintf("group %q has no group_output node; its outputs cannot be traced", n.Name),
				NodeID:   n.QualifiedName(),
				Rule:     "group_output_marker",
			})
		}
		if len(n.Inputs) > 0 && len(n.Subgraph.NodesOfKind(graph.KindGroupInput)) == 0 {
			diags = append(diags, dot.Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("group %q declares inputs but has no group_input node", n.Name),
				NodeID:   n.QualifiedName(),
				Rule:     "group_input_marker",
			})
		}
	}
	if g.Owner == nil {
		for _, kind := range []graph.Kind{graph.KindGroupInput, graph.KindGroupOutput} {
			for _, n := range g.NodesOfKind(kind) {
				diags = append(diags, dot.Diagnostic{
					Severity: "warning",
					Message:  fmt.Sprintf("node %q is a %s outside any group", n.Name, kind),
					NodeID:   n.QualifiedName(),
					Rule:     "marker_outside_group",
				})
			}
		}
	}
	return diags
}

// checkInterfacePorts verifies every group output has a same-named input on
// the active output marker, so Descend can resolve it.
func checkInterfacePorts(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, n := range g.NodesOfKind(graph.KindGroup) {
		marker := n.GroupOutputMarker()
		if marker == nil {
			continue
		}
		for _, out := range n.Outputs {
			if marker.InputByName(out.Name) == nil {
				diags = append(diags, dot.Diagnostic{
					Severity: "error",
					Message:  fmt.Sprintf("group %q output %q has no matching group_output input", n.Name, out.Name),
					NodeID:   n.QualifiedName(),
					Rule:     "interface_port",
				})
			}
		}
	}
	return diags
}

// checkImages flags image textures without a bound image.
func checkImages(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, n := range g.NodesOfKind(graph.KindImageTexture) {
		if n.Prop("image") == "" {
			diags = append(diags, dot.Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("image_texture %q has no image; it will not count as a texture", n.Name),
				NodeID:   n.QualifiedName(),
				Rule:     "image_missing",
			})
		}
	}
	return diags
}

// checkOperations flags unknown math and vector_math operations.
func checkOperations(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, n := range g.Nodes {
		known, ok := knownOperations[n.Kind]
		if !ok {
			continue
		}
		if op := n.Prop("operation"); !known[op] {
			diags = append(diags, dot.Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("%s %q has unknown operation %q", n.Kind, n.Name, op),
				NodeID:   n.QualifiedName(),
				Rule:     "operation_known",
			})
		}
	}
	return diags
}

// checkMixMultiply flags mix nodes whose blend type is unknown, and
// multiply mixes that will not be recognized as a plain multiply.
func checkMixMultiply(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, n := range g.NodesOfKind(graph.KindMix) {
		blend := n.Prop("blend_type")
		if !validBlendTypes[blend] {
			diags = append(diags, dot.Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("mix %q has unknown blend_type %q", n.Name, blend),
				NodeID:   n.QualifiedName(),
				Rule:     "blend_type",
			})
			continue
		}
		if blend != "MULTIPLY" {
			continue
		}
		fac := n.InputByName("Factor")
		if fac == nil {
			continue
		}
		if fac.Link() != nil || fac.Default.Scalar() != 1 {
			diags = append(diags, dot.Diagnostic{
				Severity: "info",
				Message:  fmt.Sprintf("mix %q multiplies with a factor other than an unlinked 1; it is not treated as a multiply", n.Name),
				NodeID:   n.QualifiedName(),
				Rule:     "mix_multiply_factor",
			})
		}
	}
	return diags
}

// checkTangentUVMap flags UV-map tangents without a UV map name.
func checkTangentUVMap(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, n := range g.NodesOfKind(graph.KindTangent) {
		if n.Prop("direction_type") == "UV_MAP" && n.Prop("uv_map") == "" {
			diags = append(diags, dot.Diagnostic{
				Severity: "info",
				Message:  fmt.Sprintf("tangent %q reads a UV map but names none; the active map is assumed", n.Name),
				NodeID:   n.QualifiedName(),
				Rule:     "tangent_uv_map",
			})
		}
	}
	return diags
}

// checkAttributeType flags attribute reads that are not per-vertex geometry reads.
func checkAttributeType(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, n := range g.NodesOfKind(graph.KindAttribute) {
		if t := n.Prop("attribute_type"); t != "GEOMETRY" {
			diags = append(diags, dot.Diagnostic{
				Severity: "info",
				Message:  fmt.Sprintf("attribute %q has attribute_type %q; only GEOMETRY is a vertex attribute", n.Name, t),
				NodeID:   n.QualifiedName(),
				Rule:     "attribute_type",
			})
		}
	}
	return diags
}

// checkMutedLinks reports muted links, which traversal ignores.
func checkMutedLinks(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, l := range g.Links {
		if l.Muted {
			diags = append(diags, dot.Diagnostic{
				Severity: "info",
				Message:  fmt.Sprintf("link %s -> %s is muted and ignored", l.From, l.To),
				EdgeID:   edgeID(l),
				Rule:     "muted_link",
			})
		}
	}
	return diags
}

// checkDataKinds flags shader outputs wired into non-shader inputs.
func checkDataKinds(g *graph.Graph) []dot.Diagnostic {
	var diags []dot.Diagnostic
	for _, l := range g.Links {
		from, to := l.From.DataKind, l.To.DataKind
		if from == graph.DataOpaque || to == graph.DataOpaque {
			continue
		}
		if (from == graph.DataShader) != (to == graph.DataShader) {
			diags = append(diags, dot.Diagnostic{
				Severity: "warning",
				Message:  fmt.Sprintf("link %s -> %s connects %s to %s", l.From, l.To, from, to),
				EdgeID:   edgeID(l),
				Rule:     "data_kind",
			})
		}
	}
	return diags
}
