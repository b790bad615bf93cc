// ABOUTME: Port templates per node kind, mirroring the host's built-in shader node layouts.
// ABOUTME: AddNode instantiates these so every loaded node has the ports the extractors expect.
package graph

// portTemplate describes one port a kind is created with.
type portTemplate struct {
	name       string
	identifier string
	dataKind   DataKind
	def        Literal
}

type kindTemplate struct {
	inputs  []portTemplate
	outputs []portTemplate
}

func in(name string, dk DataKind, def ...float64) portTemplate {
	return portTemplate{name: name, identifier: name, dataKind: dk, def: def}
}

func inID(name, id string, dk DataKind, def ...float64) portTemplate {
	return portTemplate{name: name, identifier: id, dataKind: dk, def: def}
}

var catalog = map[Kind]kindTemplate{
	KindReroute: {
		inputs:  []portTemplate{in("Input", DataOpaque)},
		outputs: []portTemplate{in("Output", DataOpaque)},
	},
	KindValue: {
		outputs: []portTemplate{in("Value", DataFloat, 0.5)},
	},
	KindRGB: {
		outputs: []portTemplate{in("Color", DataColor, 0.5, 0.5, 0.5, 1)},
	},
	KindMath: {
		inputs: []portTemplate{
			inID("Value", "Value", DataFloat, 0.5),
			inID("Value", "Value_001", DataFloat, 0.5),
			inID("Value", "Value_002", DataFloat, 0.5),
		},
		outputs: []portTemplate{in("Value", DataFloat)},
	},
	KindVectorMath: {
		inputs: []portTemplate{
			inID("Vector", "Vector", DataVector, 0, 0, 0),
			inID("Vector", "Vector_001", DataVector, 0, 0, 0),
			inID("Vector", "Vector_002", DataVector, 0, 0, 0),
			in("Scale", DataFloat, 1),
		},
		outputs: []portTemplate{in("Vector", DataVector), in("Value", DataFloat)},
	},
	KindMix: {
		inputs: []portTemplate{
			in("Factor", DataFloat, 0.5),
			in("A", DataColor, 0.5, 0.5, 0.5, 1),
			in("B", DataColor, 0.5, 0.5, 0.5, 1),
		},
		outputs: []portTemplate{in("Result", DataColor)},
	},
	KindImageTexture: {
		inputs:  []portTemplate{in("Vector", DataVector, 0, 0, 0)},
		outputs: []portTemplate{in("Color", DataColor), in("Alpha", DataFloat)},
	},
	KindAttribute: {
		outputs: []portTemplate{
			in("Color", DataColor), in("Vector", DataVector), in("Fac", DataFloat), in("Alpha", DataFloat),
		},
	},
	KindVertexColor: {
		outputs: []portTemplate{in("Color", DataColor), in("Alpha", DataFloat)},
	},
	KindTangent: {
		outputs: []portTemplate{in("Tangent", DataVector)},
	},
	KindSeparateXYZ: {
		inputs:  []portTemplate{in("Vector", DataVector, 0, 0, 0)},
		outputs: []portTemplate{in("X", DataFloat), in("Y", DataFloat), in("Z", DataFloat)},
	},
	KindPrincipledBSDF: {
		inputs: []portTemplate{
			in("Base Color", DataColor, 0.8, 0.8, 0.8, 1),
			in("Metallic", DataFloat, 0),
			in("Roughness", DataFloat, 0.5),
			in("IOR", DataFloat, 1.5),
			in("Alpha", DataFloat, 1),
			in("Normal", DataVector, 0, 0, 0),
			in("Anisotropic", DataFloat, 0),
			in("Anisotropic Rotation", DataFloat, 0),
			in("Tangent", DataVector, 0, 0, 0),
			in("Emission Color", DataColor, 1, 1, 1, 1),
			in("Emission Strength", DataFloat, 0),
		},
		outputs: []portTemplate{in("BSDF", DataShader)},
	},
	KindNormalMap: {
		inputs:  []portTemplate{in("Strength", DataFloat, 1), in("Color", DataColor, 0.5, 0.5, 1, 1)},
		outputs: []portTemplate{in("Normal", DataVector)},
	},
	KindUVMap: {
		outputs: []portTemplate{in("UV", DataVector)},
	},
	KindMaterialOutput: {
		inputs: []portTemplate{
			in("Surface", DataShader), in("Volume", DataShader), in("Displacement", DataVector, 0, 0, 0),
		},
	},
}

// defaultProps are the property values a freshly created node carries.
var defaultProps = map[Kind]map[string]string{
	KindMath:       {"operation": "ADD"},
	KindVectorMath: {"operation": "ADD"},
	KindMix:        {"blend_type": "MIX", "data_type": "RGBA"},
	KindAttribute:  {"attribute_type": "GEOMETRY", "attribute_name": ""},
	KindTangent:    {"direction_type": "RADIAL"},
}

// CatalogDefault returns the default a kind's template gives the port with
// this identifier.
func CatalogDefault(kind Kind, dir Direction, identifier string) (Literal, bool) {
	tmpl := catalog[kind].inputs
	if dir == Output {
		tmpl = catalog[kind].outputs
	}
	for _, t := range tmpl {
		if t.identifier == identifier {
			return t.def, true
		}
	}
	return nil, false
}

func instantiate(n *Node) {
	tmpl := catalog[n.Kind]
	for _, t := range tmpl.inputs {
		n.AddInput(t.name, t.identifier, t.dataKind, t.def.Clone())
	}
	for _, t := range tmpl.outputs {
		n.AddOutput(t.name, t.identifier, t.dataKind, t.def.Clone())
	}
	for k, v := range defaultProps[n.Kind] {
		n.Props[k] = v
	}
}
