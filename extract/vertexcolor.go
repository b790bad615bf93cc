// ABOUTME: Vertex-attribute extractor for color/alpha input pairs.
// ABOUTME: Recognizes direct attribute reads and reads scaled through a multiply node.
package extract

import (
	"github.com/2389-research/nodetrace/graph"
	"github.com/2389-research/nodetrace/search"
)

// AttributeRef names the vertex attribute one input reads. Active means the
// host's active/default attribute, used when the read node names none.
type AttributeRef struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Active bool   `json:"active" yaml:"active"`
}

// AttributeBinding is the result of VertexAttribute. Either side may be nil.
type AttributeBinding struct {
	Color *AttributeRef `json:"color,omitempty" yaml:"color,omitempty"`
	Alpha *AttributeRef `json:"alpha,omitempty" yaml:"alpha,omitempty"`
}

// VertexAttribute reports which vertex attributes feed a color input and an
// alpha input. Either port may be nil. It returns nil when neither binds.
func VertexAttribute(color, alpha *graph.Port, ctx *ExportContext) *AttributeBinding {
	b := &AttributeBinding{}
	if color != nil {
		b.Color = attributeAt(search.NavigatorAt(color, ctx.options()...), graph.KindMix, 0)
	}
	if alpha != nil {
		b.Alpha = attributeAt(search.NavigatorAt(alpha, ctx.options()...), graph.KindMath, 0)
	}
	if b.Color == nil && b.Alpha == nil {
		return nil
	}
	return b
}

// attributeAt looks one step back from nav's active input. multiplyKind is
// the node kind accepted as a scaling multiply on this side.
func attributeAt(nav search.Navigator, multiplyKind graph.Kind, depth int) *AttributeRef {
	if depth > search.DefaultMaxDepth {
		return nil
	}
	prev := nav.PeekBack()
	if !prev.Moved {
		return nil
	}
	if ref := readAttribute(prev.Node); ref != nil {
		return ref
	}
	if prev.Node.Kind != multiplyKind {
		return nil
	}
	a, b, ok := search.MultiplyOperands(prev.Node)
	if !ok {
		return nil
	}
	for _, operand := range []*graph.Port{a, b} {
		sub := prev
		sub.In = operand
		if ref := attributeAt(sub, multiplyKind, depth+1); ref != nil {
			return ref
		}
	}
	return nil
}

// readAttribute recognizes a node reading a per-vertex attribute.
func readAttribute(n *graph.Node) *AttributeRef {
	var name string
	switch n.Kind {
	case graph.KindAttribute:
		if n.Prop("attribute_type") != "GEOMETRY" {
			return nil
		}
		name = n.Prop("attribute_name")
	case graph.KindVertexColor:
		name = n.Prop("layer_name")
	default:
		return nil
	}
	if name == "" {
		return &AttributeRef{Active: true}
	}
	return &AttributeRef{Name: name}
}
