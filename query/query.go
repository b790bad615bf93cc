// ABOUTME: Runs one named query (constant, factor, texture, search, ...) against a loaded material graph.
// ABOUTME: A Runner is one export run: it owns the export context and the texture cache for its graph.
package query

import (
	"fmt"
	"strings"

	"github.com/2389-research/nodetrace/dot/validator"
	"github.com/2389-research/nodetrace/extract"
	"github.com/2389-research/nodetrace/graph"
	"github.com/2389-research/nodetrace/report"
	"github.com/2389-research/nodetrace/search"
)

// Op names a query.
type Op string

const (
	OpNodes        Op = "nodes"
	OpLint         Op = "lint"
	OpSearch       Op = "search"
	OpConstant     Op = "constant"
	OpFactor       Op = "factor"
	OpFactorStrict Op = "factor_strict"
	OpTexture      Op = "texture"
	OpVertexColor  Op = "vertex_color"
	OpAnisotropy   Op = "anisotropy"
)

var allOps = []Op{OpNodes, OpLint, OpSearch, OpConstant, OpFactor, OpFactorStrict, OpTexture, OpVertexColor, OpAnisotropy}

// ParseOp resolves a query name. Dashes are accepted in place of underscores.
func ParseOp(s string) (Op, error) {
	s = strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for _, op := range allOps {
		if string(op) == s {
			return op, nil
		}
	}
	return "", &UsageError{Msg: fmt.Sprintf("unknown query %q", s)}
}

// NeedsInput reports whether the query starts from an input port.
func (op Op) NeedsInput() bool {
	switch op {
	case OpSearch, OpConstant, OpFactor, OpFactorStrict, OpTexture, OpVertexColor:
		return true
	}
	return false
}

// Request describes one query. Node may be qualified with its group chain
// ("Lighting/Mix").
type Request struct {
	Op    Op
	Node  string
	Input string
	Alpha string // vertex_color: optional alpha input on the same node
	Kind  string // search: node kind to match
	Name  string // search: node name to match
}

// NotFoundError reports a node or port named by a request that does not exist.
type NotFoundError struct {
	What string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.Name)
}

// UsageError reports a malformed request.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Config tunes traversal for a Runner.
type Config struct {
	MaxDepth int
	Trace    func(format string, args ...any)
}

// Runner executes queries against one graph.
type Runner struct {
	graph *graph.Graph
	ctx   *extract.ExportContext
	cache *extract.Cache
}

// NewRunner starts an export run over g.
func NewRunner(g *graph.Graph, cfg Config) *Runner {
	var opts []search.Option
	if cfg.MaxDepth > 0 {
		opts = append(opts, search.WithMaxDepth(cfg.MaxDepth))
	}
	if cfg.Trace != nil {
		opts = append(opts, search.WithTrace(cfg.Trace))
	}
	return &Runner{
		graph: g,
		ctx:   extract.NewExportContext(g.Name, opts...),
		cache: extract.NewCache(),
	}
}

// Context returns the run's export context.
func (r *Runner) Context() *extract.ExportContext { return r.ctx }

// CacheStats reports the texture cache counters for this run.
func (r *Runner) CacheStats() extract.Stats { return r.cache.Stats() }

// Run executes req.
func (r *Runner) Run(req Request) (*report.Result, error) {
	res := &report.Result{
		Material: r.graph.Name,
		Query:    string(req.Op),
		Node:     req.Node,
		Input:    req.Input,
	}

	switch req.Op {
	case OpNodes:
		for _, n := range r.graph.NodesDeep() {
			res.Nodes = append(res.Nodes, *report.RefOf(n))
		}
		res.Found = len(res.Nodes) > 0
		return res, nil
	case OpLint:
		res.Diagnostics = validator.Lint(r.graph)
		res.Found = true
		return res, nil
	}

	if req.Node == "" {
		return nil, &UsageError{Msg: fmt.Sprintf("query %s needs a node", req.Op)}
	}
	node, ctx, err := r.resolve(req.Node)
	if err != nil {
		return nil, err
	}

	if req.Op == OpAnisotropy {
		data := extract.Anisotropy(node, ctx)
		res.Anisotropy, res.Found = data, data != nil
		return res, nil
	}
	if !req.Op.NeedsInput() {
		return nil, &UsageError{Msg: fmt.Sprintf("unknown query %q", req.Op)}
	}

	if req.Input == "" {
		return nil, &UsageError{Msg: fmt.Sprintf("query %s needs an input", req.Op)}
	}
	in, err := input(node, req.Input)
	if err != nil {
		return nil, err
	}

	switch req.Op {
	case OpConstant, OpFactor, OpFactorStrict:
		nav := search.NavigatorAt(in, ctx.Options...)
		var c search.Constant
		var ok bool
		switch req.Op {
		case OpConstant:
			c, ok = nav.Constant()
		case OpFactor:
			c, ok = nav.Factor()
		default:
			c, ok = nav.FactorStrict()
		}
		if ok {
			res.Constant, res.Found = &c, true
		}
	case OpTexture:
		tex := r.cache.Texture(in, ctx)
		res.Texture, res.Found = report.RefOf(tex), tex != nil
		stats := r.cache.Stats()
		res.Cache = &stats
	case OpSearch:
		pred, err := predicate(req)
		if err != nil {
			return nil, err
		}
		for _, m := range search.Search(in, pred, ctx.Options...) {
			res.Matches = append(res.Matches, report.MatchOf(m))
		}
		res.Found = len(res.Matches) > 0
	case OpVertexColor:
		var alpha *graph.Port
		if req.Alpha != "" {
			if alpha, err = input(node, req.Alpha); err != nil {
				return nil, err
			}
		}
		b := extract.VertexAttribute(in, alpha, ctx)
		res.Attributes, res.Found = b, b != nil
	}
	return res, nil
}

// resolve finds a possibly qualified node and the export context to walk
// from it. Nodes inside groups start with the owning groups on the scope, so
// walks can leave through input markers.
func (r *Runner) resolve(name string) (*graph.Node, *extract.ExportContext, error) {
	n := r.graph.FindQualified(name)
	if n == nil {
		return nil, nil, &NotFoundError{What: "node", Name: name}
	}
	if n.Graph.Owner == nil {
		return n, r.ctx, nil
	}

	var owners []*graph.Node
	for o := n.Graph.Owner; o != nil; o = o.Graph.Owner {
		owners = append([]*graph.Node{o}, owners...)
	}
	var scope search.Scope
	for _, o := range owners {
		scope = scope.Push(search.Frame{Group: o})
	}

	// Same ID: a nested graph has exactly one owner chain, so cached results
	// keyed by port stay valid.
	ctx := &extract.ExportContext{
		ID:       r.ctx.ID,
		Material: r.ctx.Material,
		Options:  append(append([]search.Option(nil), r.ctx.Options...), search.WithScope(scope)),
	}
	return n, ctx, nil
}

// input resolves an input by identifier, then display name.
func input(n *graph.Node, ref string) (*graph.Port, error) {
	if p := n.Input(graph.PortKey{Identifier: ref, Name: ref}); p != nil {
		return p, nil
	}
	return nil, &NotFoundError{What: "input", Name: n.Name + ":" + ref}
}

func predicate(req Request) (search.Predicate, error) {
	var preds []search.Predicate
	if req.Kind != "" {
		k, err := graph.ParseKind(req.Kind)
		if err != nil {
			return nil, &UsageError{Msg: err.Error()}
		}
		preds = append(preds, search.ByKind(k))
	}
	if req.Name != "" {
		preds = append(preds, search.ByName(req.Name))
	}
	if len(preds) == 0 {
		return search.Any(), nil
	}
	return search.And(preds...), nil
}
