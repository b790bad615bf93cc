// ABOUTME: Tests for texture presence and the per-export result cache.
// ABOUTME: Cache tests count lookups through NewCacheWith to observe memoization.
package extract

import (
	"testing"

	"github.com/2389-research/nodetrace/graph"
	"github.com/2389-research/nodetrace/search"
)

func TestTexture(t *testing.T) {
	g := graph.New("mat")
	bound := add(t, g, graph.KindImageTexture, "Bound", "image", "wood.png")
	unbound := add(t, g, graph.KindImageTexture, "Unbound")
	mul := add(t, g, graph.KindMath, "Mul", "operation", "MULTIPLY")
	mix := add(t, g, graph.KindMix, "Mix")
	bsdf := add(t, g, graph.KindPrincipledBSDF, "BSDF")

	link(t, g, bound.OutputByName("Alpha"), mul.InputByIdentifier("Value"))
	link(t, g, mul.Outputs[0], bsdf.InputByName("Roughness"))
	link(t, g, unbound.OutputByName("Color"), bsdf.InputByName("Emission Color"))
	link(t, g, unbound.OutputByName("Color"), mix.InputByName("A"))
	link(t, g, bound.OutputByName("Color"), mix.InputByName("B"))
	link(t, g, mix.Outputs[0], bsdf.InputByName("Base Color"))

	ctx := NewExportContext("mat")
	tests := []struct {
		name string
		port *graph.Port
		want *graph.Node
	}{
		{"bound upstream", bsdf.InputByName("Roughness"), bound},
		{"unbound image", bsdf.InputByName("Emission Color"), nil},
		{"only first match counts", bsdf.InputByName("Base Color"), nil},
		{"unlinked", bsdf.InputByName("Metallic"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Texture(tt.port, ctx); got != tt.want {
				t.Errorf("Texture() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTexture_NilContextUsesDefaults(t *testing.T) {
	g := graph.New("mat")
	tex := add(t, g, graph.KindImageTexture, "Tex", "image", "a.png")
	bsdf := add(t, g, graph.KindPrincipledBSDF, "BSDF")
	link(t, g, tex.OutputByName("Color"), bsdf.InputByName("Base Color"))

	if got := Texture(bsdf.InputByName("Base Color"), nil); got != tex {
		t.Errorf("Texture() = %v", got)
	}
}

func TestTexture_ContextOptions(t *testing.T) {
	g := graph.New("mat")
	tex := add(t, g, graph.KindImageTexture, "Tex", "image", "a.png")
	bsdf := add(t, g, graph.KindPrincipledBSDF, "BSDF")
	prev := tex.OutputByName("Color")
	for i := 0; i < 5; i++ {
		r := add(t, g, graph.KindReroute, "R"+string(rune('a'+i)))
		link(t, g, prev, r.Inputs[0])
		prev = r.Outputs[0]
	}
	link(t, g, prev, bsdf.InputByName("Base Color"))

	shallow := NewExportContext("mat", search.WithMaxDepth(2))
	if got := Texture(bsdf.InputByName("Base Color"), shallow); got != nil {
		t.Errorf("depth-limited context found %v", got.Name)
	}
}

func TestCache_MemoizesPerPortAndContext(t *testing.T) {
	g := graph.New("mat")
	tex := add(t, g, graph.KindImageTexture, "Tex", "image", "a.png")
	bsdf := add(t, g, graph.KindPrincipledBSDF, "BSDF")
	link(t, g, tex.OutputByName("Color"), bsdf.InputByName("Base Color"))

	calls := 0
	cache := NewCacheWith(func(start *graph.Port, ctx *ExportContext) *graph.Node {
		calls++
		return Texture(start, ctx)
	})
	ctx := NewExportContext("mat")
	base := bsdf.InputByName("Base Color")
	metallic := bsdf.InputByName("Metallic")

	for i := 0; i < 3; i++ {
		if got := cache.Texture(base, ctx); got != tex {
			t.Fatalf("cached Texture() = %v", got)
		}
	}
	if got := cache.Texture(metallic, ctx); got != nil {
		t.Errorf("Texture(metallic) = %v", got)
	}
	cache.Texture(metallic, ctx)

	if calls != 2 {
		t.Errorf("lookup ran %d times, want 2", calls)
	}
	if s := cache.Stats(); s != (Stats{Hits: 3, Misses: 2, Entries: 2}) {
		t.Errorf("Stats() = %+v", s)
	}

	other := NewExportContext("mat")
	cache.Texture(base, other)
	if calls != 3 {
		t.Errorf("a new export context must not reuse entries; calls = %d", calls)
	}

	cache.Reset()
	if s := cache.Stats(); s != (Stats{}) {
		t.Errorf("Stats() after Reset = %+v", s)
	}
	cache.Texture(base, ctx)
	if calls != 4 {
		t.Errorf("Reset did not drop entries; calls = %d", calls)
	}
}

func TestCache_NilPort(t *testing.T) {
	cache := NewCache()
	if got := cache.Texture(nil, NewExportContext("mat")); got != nil {
		t.Errorf("Texture(nil) = %v", got)
	}
	if s := cache.Stats(); s.Misses != 0 {
		t.Errorf("nil port should not count as a miss: %+v", s)
	}
}

func TestNewExportContext_UniqueIDs(t *testing.T) {
	a, b := NewExportContext("m"), NewExportContext("m")
	if a.ID == b.ID {
		t.Error("export contexts share an ID")
	}
	if a.Material != "m" {
		t.Errorf("Material = %q", a.Material)
	}
}
