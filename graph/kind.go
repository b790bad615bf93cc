// ABOUTME: Closed set of node kinds for material graphs and their traversal classes.
// ABOUTME: Traversal() is the single dispatch point used by search and the navigator.
package graph

import "fmt"

// Kind identifies the concrete type of a node.
type Kind int

const (
	KindGeneric Kind = iota
	KindGroup
	KindGroupInput
	KindGroupOutput
	KindReroute
	KindValue
	KindRGB
	KindMath
	KindVectorMath
	KindMix
	KindImageTexture
	KindAttribute
	KindVertexColor
	KindTangent
	KindSeparateXYZ
	KindPrincipledBSDF
	KindNormalMap
	KindUVMap
	KindMaterialOutput

	kindCount
)

var kindNames = [kindCount]string{
	KindGeneric:        "generic",
	KindGroup:          "group",
	KindGroupInput:     "group_input",
	KindGroupOutput:    "group_output",
	KindReroute:        "reroute",
	KindValue:          "value",
	KindRGB:            "rgb",
	KindMath:           "math",
	KindVectorMath:     "vector_math",
	KindMix:            "mix",
	KindImageTexture:   "image_texture",
	KindAttribute:      "attribute",
	KindVertexColor:    "vertex_color",
	KindTangent:        "tangent",
	KindSeparateXYZ:    "separate_xyz",
	KindPrincipledBSDF: "principled_bsdf",
	KindNormalMap:      "normal_map",
	KindUVMap:          "uv_map",
	KindMaterialOutput: "material_output",
}

// String returns the snake_case name used in DOT and YAML files.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a snake_case kind name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindGeneric, fmt.Errorf("unknown node kind %q", s)
}

// AllKinds returns every kind in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Traversal describes how a backward walk treats a node it lands on.
type Traversal int

const (
	// Opaque nodes end a step; predicates and idiom checks look at them.
	Opaque Traversal = iota
	// PassThrough nodes are skipped via their sole input.
	PassThrough
	// GroupEnter nodes are descended into through their nested output marker.
	GroupEnter
	// GroupExit nodes (input markers) are ascended out of to the enclosing group.
	GroupExit
	// GroupSink is the output marker; walks only reach it by descending.
	GroupSink
)

// Traversal classifies the kind. Every kind must have a case here.
func (k Kind) Traversal() Traversal {
	switch k {
	case KindReroute:
		return PassThrough
	case KindGroup:
		return GroupEnter
	case KindGroupInput:
		return GroupExit
	case KindGroupOutput:
		return GroupSink
	case KindGeneric, KindValue, KindRGB, KindMath, KindVectorMath, KindMix,
		KindImageTexture, KindAttribute, KindVertexColor, KindTangent,
		KindSeparateXYZ, KindPrincipledBSDF, KindNormalMap, KindUVMap,
		KindMaterialOutput:
		return Opaque
	default:
		panic(fmt.Sprintf("graph: no traversal class for %v", k))
	}
}
