// ABOUTME: Material store: the graphs loaded from a directory of .dot/.yaml files, keyed by file stem.
// ABOUTME: Graphs are immutable snapshots shared read-only by concurrent request handlers.
package web

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/2389-research/nodetrace/graph"
	"github.com/2389-research/nodetrace/query"
)

// Material describes one loaded graph file.
type Material struct {
	Name     string    `json:"name"`
	Graph    string    `json:"graph"`
	GraphID  string    `json:"graph_id"`
	File     string    `json:"file"`
	Nodes    int       `json:"nodes"`
	Groups   int       `json:"groups"`
	LoadedAt time.Time `json:"loaded_at"`
}

type entry struct {
	meta  Material
	graph *graph.Graph
}

// MaterialStore holds the materials of one directory.
type MaterialStore struct {
	mu        sync.RWMutex
	materials map[string]*entry
	baseDir   string
}

// NewMaterialStore creates an empty store rooted at baseDir.
func NewMaterialStore(baseDir string) *MaterialStore {
	return &MaterialStore{
		materials: make(map[string]*entry),
		baseDir:   baseDir,
	}
}

// Get returns the graph and metadata of a material.
func (s *MaterialStore) Get(name string) (*graph.Graph, Material, bool) {
	if validateMaterialName(name) != nil {
		return nil, Material{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.materials[name]
	if !ok {
		return nil, Material{}, false
	}
	return e.graph, e.meta, true
}

// List returns all materials sorted by name.
func (s *MaterialStore) List() []Material {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Material, 0, len(s.materials))
	for _, e := range s.materials {
		result = append(result, e.meta)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// validateMaterialName rejects names that could cause path traversal.
func validateMaterialName(name string) error {
	if name == "" {
		return errors.New("material name must not be empty")
	}
	if strings.Contains(name, "..") {
		return errors.New("material name must not contain '..'")
	}
	if strings.ContainsAny(name, "/\\") {
		return errors.New("material name must not contain path separators")
	}
	return nil
}

// LoadAll reads every supported graph file directly under baseDir and
// replaces the store contents. Files that fail to load are logged and
// skipped; two files with the same stem keep the first in directory order.
func (s *MaterialStore) LoadAll() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("reading material directory: %w", err)
	}

	loaded := make(map[string]*entry)
	for _, de := range entries {
		if de.IsDir() || !query.Supported(de.Name()) {
			continue
		}
		path := filepath.Join(s.baseDir, de.Name())
		name := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
		if _, dup := loaded[name]; dup {
			log.Printf("component=nodetrace.web action=load_skip file=%s reason=duplicate_name name=%s", path, name)
			continue
		}

		g, err := query.LoadFile(path)
		if err != nil {
			log.Printf("component=nodetrace.web action=load_skip file=%s err=%v", path, err)
			continue
		}

		all := g.NodesDeep()
		groups := 0
		for _, n := range all {
			if n.Kind == graph.KindGroup {
				groups++
			}
		}
		loaded[name] = &entry{
			graph: g,
			meta: Material{
				Name:     name,
				Graph:    g.Name,
				GraphID:  g.ID.String(),
				File:     de.Name(),
				Nodes:    len(all),
				Groups:   groups,
				LoadedAt: time.Now(),
			},
		}
		log.Printf("component=nodetrace.web action=load name=%s file=%s nodes=%d groups=%d", name, path, len(all), groups)
	}

	s.mu.Lock()
	s.materials = loaded
	s.mu.Unlock()
	return nil
}
