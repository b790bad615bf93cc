// ABOUTME: Query result documents and their renderers: styled terminal text, JSON and YAML.
// ABOUTME: The CLI and the HTTP API both hand a Result to Render with the requested Format.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/nodetrace/dot"
	"github.com/2389-research/nodetrace/extract"
	"github.com/2389-research/nodetrace/graph"
	"github.com/2389-research/nodetrace/search"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a -format flag value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// NodeRef identifies a node in a result without exposing graph pointers.
type NodeRef struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// RefOf builds a NodeRef with the node's qualified name. Nil yields nil.
func RefOf(n *graph.Node) *NodeRef {
	if n == nil {
		return nil
	}
	return &NodeRef{
		Name:  n.QualifiedName(),
		Kind:  n.Kind.String(),
		Label: n.Label,
		Image: n.Prop("image"),
	}
}

// Match is one backward search hit.
type Match struct {
	Node  NodeRef  `json:"node" yaml:"node"`
	Depth int      `json:"depth" yaml:"depth"`
	Scope []string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// MatchOf converts a search result. Depth counts the links walked.
func MatchOf(r search.Result) Match {
	m := Match{Node: *RefOf(r.Node), Depth: len(r.Path)}
	for _, g := range r.Scope.Groups() {
		m.Scope = append(m.Scope, g.Name)
	}
	return m
}

// Result is the document produced by one query.
type Result struct {
	Material string `json:"material" yaml:"material"`
	Query    string `json:"query" yaml:"query"`
	Node     string `json:"node,omitempty" yaml:"node,omitempty"`
	Input    string `json:"input,omitempty" yaml:"input,omitempty"`
	Found    bool   `json:"found" yaml:"found"`

	Constant    *search.Constant          `json:"constant,omitempty" yaml:"constant,omitempty"`
	Texture     *NodeRef                  `json:"texture,omitempty" yaml:"texture,omitempty"`
	Matches     []Match                   `json:"matches,omitempty" yaml:"matches,omitempty"`
	Attributes  *extract.AttributeBinding `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Anisotropy  *extract.AnisotropyData   `json:"anisotropy,omitempty" yaml:"anisotropy,omitempty"`
	Diagnostics []dot.Diagnostic          `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Nodes       []NodeRef                 `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Cache       *extract.Stats            `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// Render writes r to w in the given format.
func Render(w io.Writer, f Format, r *Result) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		_, err := io.WriteString(w, Text(r))
		return err
	}
	return fmt.Errorf("unknown format %q", f)
}

// Text renders r as styled terminal output.
func Text(r *Result) string {
	var b strings.Builder

	title := r.Material + " " + r.Query
	if r.Node != "" {
		title += " " + r.Node
		if r.Input != "" {
			title += "." + r.Input
		}
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	switch {
	case r.Diagnostics != nil || r.Query == "lint":
		writeDiagnostics(&b, r.Diagnostics)
		return b.String()
	case r.Nodes != nil:
		for _, n := range r.Nodes {
			line(&b, n.Kind, n.Name)
		}
		return b.String()
	}

	if !r.Found {
		b.WriteString(AbsentStyle.Render("absent"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(FoundStyle.Render("found"))
	b.WriteString("\n")

	if c := r.Constant; c != nil {
		line(&b, "value", c.Value.String())
		pathLine(&b, c.Path)
	}
	if t := r.Texture; t != nil {
		line(&b, "texture", t.Name)
		line(&b, "image", t.Image)
	}
	for _, m := range r.Matches {
		where := m.Node.Name
		if len(m.Scope) > 0 {
			where += SubtitleStyle.Render(" in " + strings.Join(m.Scope, "/"))
		}
		line(&b, m.Node.Kind, where+SubtitleStyle.Render(fmt.Sprintf(" depth=%d", m.Depth)))
	}
	if a := r.Attributes; a != nil {
		line(&b, "color", attributeText(a.Color))
		line(&b, "alpha", attributeText(a.Alpha))
	}
	if a := r.Anisotropy; a != nil {
		line(&b, "uv map", a.UVMap)
		line(&b, "image", a.Image)
		line(&b, "strength", a.Strength.Value.String())
		pathLine(&b, a.Strength.Path)
		line(&b, "rotation", a.Rotation.Value.String())
		pathLine(&b, a.Rotation.Path)
	}
	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label))
	b.WriteString(" ")
	b.WriteString(ValueStyle.Render(value))
	b.WriteString("\n")
}

func pathLine(b *strings.Builder, p graph.PathToken) {
	b.WriteString(LabelStyle.Render(""))
	b.WriteString(" ")
	b.WriteString(PathStyle.Render(string(p)))
	b.WriteString("\n")
}

func attributeText(a *extract.AttributeRef) string {
	switch {
	case a == nil:
		return "-"
	case a.Active:
		return "(active)"
	}
	return a.Name
}

func writeDiagnostics(b *strings.Builder, diags []dot.Diagnostic) {
	if len(diags) == 0 {
		b.WriteString(FoundStyle.Render("no issues"))
		b.WriteString("\n")
		return
	}
	for _, d := range diags {
		where := d.NodeID
		if where == "" {
			where = d.EdgeID
		}
		b.WriteString(StyleForSeverity(d.Severity).Render(fmt.Sprintf("%-7s", d.Severity)))
		fmt.Fprintf(b, " %s %s", SubtitleStyle.Render("["+d.Rule+"]"), d.Message)
		if where != "" {
			b.WriteString(SubtitleStyle.Render(" (" + where + ")"))
		}
		b.WriteString("\n")
	}
}
