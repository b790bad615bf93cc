// ABOUTME: YAML loader for material graphs, including nested group graphs and their interfaces.
// ABOUTME: Uses gopkg.in/yaml.v3; links are written as "node:port" references.
package graph

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// YamlSocket is one group interface socket.
type YamlSocket struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type,omitempty"`
	Default []float64 `yaml:"default,omitempty"`
}

// YamlInterface lists the sockets a nested graph exposes.
type YamlInterface struct {
	Inputs  []YamlSocket `yaml:"inputs,omitempty"`
	Outputs []YamlSocket `yaml:"outputs,omitempty"`
}

// YamlNode is one node declaration.
type YamlNode struct {
	Name     string               `yaml:"name"`
	Kind     string               `yaml:"kind"`
	Label    string               `yaml:"label,omitempty"`
	Props    map[string]string    `yaml:"props,omitempty"`
	Defaults map[string][]float64 `yaml:"defaults,omitempty"`
}

// YamlLink is one link between "node:port" references.
type YamlLink struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Muted bool   `yaml:"muted,omitempty"`
}

// YamlGraph is a graph document; groups nest the same shape.
type YamlGraph struct {
	Name      string        `yaml:"name"`
	Interface YamlInterface `yaml:"interface,omitempty"`
	Nodes     []YamlNode    `yaml:"nodes"`
	Groups    []YamlGraph   `yaml:"groups,omitempty"`
	Links     []YamlLink    `yaml:"links,omitempty"`
}

// LoadYAMLFile reads a YAML material graph from disk.
func LoadYAMLFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file %q: %w", path, err)
	}
	defer f.Close()

	g, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph file %q: %w", path, err)
	}
	return g, nil
}

// DecodeYAML parses a YAML material graph document.
func DecodeYAML(r io.Reader) (*Graph, error) {
	var doc YamlGraph
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	return buildYAML(&doc)
}

func buildYAML(doc *YamlGraph) (*Graph, error) {
	g := New(doc.Name)
	g.SetInterface(yamlSockets(doc.Interface.Inputs), yamlSockets(doc.Interface.Outputs))

	for _, yn := range doc.Nodes {
		kind, err := ParseKind(yn.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", yn.Name, err)
		}
		n, err := g.AddNode(kind, yn.Name)
		if err != nil {
			return nil, err
		}
		n.Label = yn.Label
		for k, v := range yn.Props {
			n.Props[k] = v
		}
		for ref, val := range yn.Defaults {
			p := resolvePort(n.Inputs, ref)
			if p == nil {
				p = resolvePort(n.Outputs, ref)
			}
			if p == nil {
				return nil, fmt.Errorf("node %q has no port %q for default", yn.Name, ref)
			}
			p.Default = Literal(val)
		}
	}

	for i := range doc.Groups {
		sub, err := buildYAML(&doc.Groups[i])
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", doc.Groups[i].Name, err)
		}
		if _, err := g.AddGroup(doc.Groups[i].Name, sub); err != nil {
			return nil, err
		}
	}

	for _, yl := range doc.Links {
		fromNode, fromPort, _ := strings.Cut(yl.From, ":")
		toNode, toPort, _ := strings.Cut(yl.To, ":")
		l, err := g.ConnectNames(fromNode, fromPort, toNode, toPort)
		if err != nil {
			return nil, err
		}
		l.Muted = yl.Muted
	}

	return g, nil
}

func yamlSockets(in []YamlSocket) []Socket {
	out := make([]Socket, 0, len(in))
	for _, s := range in {
		dk := DataKind(s.Type)
		if dk == "" {
			dk = DataFloat
		}
		out = append(out, Socket{Name: s.Name, DataKind: dk, Default: Literal(s.Default)})
	}
	return out
}
