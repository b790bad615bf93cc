// ABOUTME: Tests for the material store: directory scanning, naming, reload and name validation.
// ABOUTME: Fixtures are tiny DOT and YAML materials written into t.TempDir.
package web

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const storeDOT = `digraph Wood {
  "Principled BSDF" [kind=principled_bsdf]
  Roughness [kind=value, out.Value=0.3]
  Roughness:Value -> "Principled BSDF":Roughness
}`

const storeYAML = `
name: Stone
nodes:
  - name: Principled BSDF
    kind: principled_bsdf
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMaterialStoreLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"wood.dot":   storeDOT,
		"stone.yaml": storeYAML,
		"readme.md":  "# not a graph",
		"bad.dot":    "digraph {",
	})
	if err := os.Mkdir(filepath.Join(dir, "nested.dot"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewMaterialStore(dir)
	if err := s.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	var names []string
	for _, m := range s.List() {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"stone", "wood"}, names); diff != "" {
		t.Errorf("materials mismatch (-want +got):\n%s", diff)
	}

	g, meta, ok := s.Get("wood")
	if !ok {
		t.Fatal("wood not loaded")
	}
	if g.Name != "Wood" || meta.Graph != "Wood" || meta.File != "wood.dot" || meta.Nodes != 2 {
		t.Errorf("wood metadata = %+v", meta)
	}
	if meta.GraphID != g.ID.String() {
		t.Errorf("GraphID = %q, want %q", meta.GraphID, g.ID.String())
	}
}

func TestMaterialStoreDuplicateStemKeepsFirst(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"wood.dot":  storeDOT,
		"wood.yaml": storeYAML,
	})
	s := NewMaterialStore(dir)
	if err := s.LoadAll(); err != nil {
		t.Fatal(err)
	}
	if len(s.List()) != 1 {
		t.Fatalf("expected one material, got %d", len(s.List()))
	}
	// ReadDir sorts by file name, so wood.dot wins.
	if _, meta, _ := s.Get("wood"); meta.File != "wood.dot" {
		t.Errorf("File = %q, want wood.dot", meta.File)
	}
}

func TestMaterialStoreMissingDir(t *testing.T) {
	s := NewMaterialStore(filepath.Join(t.TempDir(), "missing"))
	if err := s.LoadAll(); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestMaterialStoreReloadReplaces(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"wood.dot": storeDOT})
	s := NewMaterialStore(dir)
	if err := s.LoadAll(); err != nil {
		t.Fatal(err)
	}

	writeFiles(t, dir, map[string]string{"stone.yml": storeYAML})
	if err := os.Remove(filepath.Join(dir, "wood.dot")); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadAll(); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.Get("wood"); ok {
		t.Error("wood should be gone after reload")
	}
	if _, _, ok := s.Get("stone"); !ok {
		t.Error("stone should be present after reload")
	}
}

func TestValidateMaterialName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"wood", false},
		{"wood-v2", false},
		{"", true},
		{"..", true},
		{"../etc", true},
		{"a/b", true},
		{`a\b`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMaterialName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateMaterialName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestMaterialStoreGetRejectsBadNames(t *testing.T) {
	s := NewMaterialStore(t.TempDir())
	if _, _, ok := s.Get("../wood"); ok {
		t.Error("Get should reject traversal names")
	}
}
