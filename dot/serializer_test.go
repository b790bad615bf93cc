// ABOUTME: Tests for the DOT serializer: quoting rules and load/serialize/load round trips.
// ABOUTME: Round trips compare structure, not text, so attribute ordering is free to change.
package dot

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/2389-research/nodetrace/graph"
)

// shape summarizes a graph for structural comparison.
type shape struct {
	Nodes    map[string]string
	Links    []string
	Defaults map[string]string
	Groups   map[string]shape
}

func shapeOf(g *graph.Graph) shape {
	s := shape{
		Nodes:    map[string]string{},
		Defaults: map[string]string{},
		Groups:   map[string]shape{},
	}
	for _, n := range g.Nodes {
		s.Nodes[n.Name] = n.Kind.String()
		for _, p := range append(append([]*graph.Port{}, n.Inputs...), n.Outputs...) {
			if p.Default != nil {
				s.Defaults[p.ID()[len(g.ID.String())+1:]] = p.Default.String()
			}
		}
		if n.Subgraph != nil {
			s.Groups[n.Name] = shapeOf(n.Subgraph)
		}
	}
	for _, l := range g.Links {
		ref := l.From.Node.Name + ":" + l.From.Identifier + "->" + l.To.Node.Name + ":" + l.To.Identifier
		if l.Muted {
			ref += " muted"
		}
		s.Links = append(s.Links, ref)
	}
	return s
}

func TestSerialize_RoundTrip(t *testing.T) {
	for _, name := range []string{"painted.dot", "lit.dot", "brushed.dot"} {
		t.Run(name, func(t *testing.T) {
			g := loadTestdata(t, name)
			text := Serialize(g)

			again, err := Load(text)
			if err != nil {
				t.Fatalf("reload failed: %v\n%s", err, text)
			}
			if diff := cmp.Diff(shapeOf(g), shapeOf(again)); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s\n%s", diff, text)
			}
		})
	}
}

func TestSerialize_MutedAndProps(t *testing.T) {
	g, err := Load(`digraph m {
		V [kind=value, out.Value=2]
		M [kind=math, operation=MULTIPLY, label="Scale it"]
		V -> M:Value_001 [muted=true]
	}`)
	if err != nil {
		t.Fatal(err)
	}
	text := Serialize(g)
	for _, want := range []string{
		"digraph m {",
		`M [kind=math, label="Scale it", operation="MULTIPLY"]`,
		"V [kind=value, out.Value=2]",
		"V:Value -> M:Value_001 [muted=true]",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestQuoteID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"simple", "simple"},
		{"Principled BSDF", `"Principled BSDF"`},
		{"Value_001", "Value_001"},
		{"Reroute.001", "Reroute.001"},
		{".hidden", `".hidden"`},
		{"42", `"42"`},
		{"true", `"true"`},
		{"graph", `"graph"`},
		{`say "hi"`, `"say \"hi\""`},
	}
	for _, tt := range tests {
		if got := quoteID(tt.in); got != tt.want {
			t.Errorf("quoteID(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSerialize_CustomDefaultOnLinkedInput(t *testing.T) {
	g := loadTestdata(t, "painted.dot")
	text := Serialize(g)
	if !strings.Contains(text, `"in.Base Color"="0.8,0.2,0.2,1"`) {
		t.Errorf("custom default on a linked input was dropped:\n%s", text)
	}
	if strings.Contains(text, "in.Metallic") {
		t.Errorf("catalog defaults should not be written:\n%s", text)
	}
}
