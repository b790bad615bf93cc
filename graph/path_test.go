// ABOUTME: Tests for path tokens of port defaults, including group-qualified tokens.
// ABOUTME: Tokens are compared as exact strings since the export pipeline stores them.
package graph

import "testing"

func TestDefaultPath(t *testing.T) {
	g := New("mat")
	bsdf := mustNode(t, g, KindPrincipledBSDF, "Principled BSDF")
	val := mustNode(t, g, KindValue, "ConstantFactor")

	tests := []struct {
		name string
		port *Port
		want PathToken
	}{
		{"input", bsdf.InputByName("Roughness"), `nodes["Principled BSDF"].inputs[2].default_value`},
		{"output", val.Outputs[0], `nodes["ConstantFactor"].outputs[0].default_value`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultPath(tt.port); got != tt.want {
				t.Errorf("DefaultPath() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDefaultPath_NestedGroups(t *testing.T) {
	inner := New("Inner")
	c := mustNode(t, inner, KindValue, "ConstantA")

	mid := New("Lighting")
	if _, err := mid.AddGroup("Inner", inner); err != nil {
		t.Fatal(err)
	}
	root := New("mat")
	if _, err := root.AddGroup("Lighting", mid); err != nil {
		t.Fatal(err)
	}

	want := PathToken(`groups["Lighting"].groups["Inner"].nodes["ConstantA"].outputs[0].default_value`)
	if got := DefaultPath(c.Outputs[0]); got != want {
		t.Errorf("DefaultPath() = %s, want %s", got, want)
	}
}

func TestQualifiedName_RoundTrip(t *testing.T) {
	inner := New("Inner")
	c := mustNode(t, inner, KindValue, "ConstantA")

	mid := New("Lighting")
	if _, err := mid.AddGroup("Inner", inner); err != nil {
		t.Fatal(err)
	}
	root := New("mat")
	top, err := root.AddGroup("Lighting", mid)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.QualifiedName(); got != "Lighting/Inner/ConstantA" {
		t.Errorf("QualifiedName() = %q", got)
	}
	if got := top.QualifiedName(); got != "Lighting" {
		t.Errorf("root node QualifiedName() = %q", got)
	}
	if got := root.FindQualified("Lighting/Inner/ConstantA"); got != c {
		t.Errorf("FindQualified returned %v, want ConstantA", got)
	}
	for _, name := range []string{"Lighting/Missing", "Lighting/Inner/ConstantA/More", "Nope"} {
		if got := root.FindQualified(name); got != nil {
			t.Errorf("FindQualified(%q) = %v, want nil", name, got)
		}
	}
}
