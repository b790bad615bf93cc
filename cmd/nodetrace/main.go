// ABOUTME: CLI entrypoint for nodetrace: load a material graph, run one backward query, print the result.
// ABOUTME: Also starts the read-only HTTP query API over a directory of materials with -server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/2389-research/nodetrace/dot"
	"github.com/2389-research/nodetrace/query"
	"github.com/2389-research/nodetrace/report"
	"github.com/2389-research/nodetrace/web"
)

var version = "dev"

// Exit codes.
const (
	exitFound  = 0
	exitAbsent = 1 // also load and lookup failures, and lint errors
	exitUsage  = 2
)

// config holds all CLI configuration parsed from flags and positional arguments.
type config struct {
	serverMode bool
	port       int
	dir        string

	node       string
	input      string
	searchKind string
	searchName string
	constant   bool
	factor     bool
	strict     bool
	texture    bool
	vertex     bool
	alpha      string
	anisotropy bool
	lint       bool
	nodes      bool
	emitDOT    bool

	format      string
	maxDepth    int
	verbose     bool
	showVersion bool
	graphFile   string
}

func main() {
	loadDotEnvAuto()

	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(exitUsage)
	}

	if cfg.showVersion {
		fmt.Printf("nodetrace %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg, os.Stdout, os.Stderr))
}

// parseFlags parses command-line flags. NODETRACE_MAX_DEPTH, NODETRACE_PORT
// and NODETRACE_DIR supply defaults that explicit flags override.
func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := newFlagSet(&cfg, stderr)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		cfg.graphFile = fs.Arg(0)
	}
	return cfg, nil
}

// newFlagSet binds every flag to cfg.
func newFlagSet(cfg *config, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("nodetrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&cfg.serverMode, "server", false, "Start HTTP query API")
	fs.IntVar(&cfg.port, "port", envInt("NODETRACE_PORT", 2390), "Server port")
	fs.StringVar(&cfg.dir, "dir", os.Getenv("NODETRACE_DIR"), "Directory of material graphs served by -server")

	fs.StringVar(&cfg.node, "node", "", "Node to query, qualified with its groups (Lighting/Mix)")
	fs.StringVar(&cfg.input, "input", "", "Input port identifier or name on -node")
	fs.StringVar(&cfg.searchKind, "search", "", "Search backward for nodes of this kind")
	fs.StringVar(&cfg.searchName, "name", "", "Search backward for nodes with this name")
	fs.BoolVar(&cfg.constant, "constant", false, "Report the constant bound to -input")
	fs.BoolVar(&cfg.factor, "factor", false, "Report the scalar factor on -input")
	fs.BoolVar(&cfg.strict, "factor-strict", false, "Like -factor, but require a non-constant signal operand")
	fs.BoolVar(&cfg.texture, "texture", false, "Report the image texture feeding -input")
	fs.BoolVar(&cfg.vertex, "vertex-color", false, "Report the vertex attribute feeding -input (and -alpha)")
	fs.StringVar(&cfg.alpha, "alpha", "", "Alpha input paired with -vertex-color")
	fs.BoolVar(&cfg.anisotropy, "anisotropy", false, "Report the anisotropy setup on -node")
	fs.BoolVar(&cfg.lint, "lint", false, "Lint the material graph")
	fs.BoolVar(&cfg.nodes, "nodes", false, "List every node, including nodes inside groups")

	fs.BoolVar(&cfg.emitDOT, "dot", false, "Print the material as normalized DOT instead of querying")
	fs.StringVar(&cfg.format, "format", "text", "Output format: text, json, yaml")
	fs.IntVar(&cfg.maxDepth, "max-depth", envInt("NODETRACE_MAX_DEPTH", 0), "Traversal depth guard (0 keeps the default)")
	fs.BoolVar(&cfg.verbose, "verbose", false, "Log traversal steps and cache statistics")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(stderr, version)
	}
	return fs
}

// envInt reads an integer environment variable, falling back to def when it
// is unset or malformed.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("component=nodetrace.cli action=env_ignored key=%s value=%q err=%v", key, v, err)
		return def
	}
	return n
}

// request builds the query a config asks for. Exactly one query flag must be set.
func request(cfg config) (query.Request, error) {
	req := query.Request{Node: cfg.node, Input: cfg.input}

	var ops []query.Op
	if cfg.searchKind != "" || cfg.searchName != "" {
		ops = append(ops, query.OpSearch)
		req.Kind, req.Name = cfg.searchKind, cfg.searchName
	}
	for _, f := range []struct {
		set bool
		op  query.Op
	}{
		{cfg.constant, query.OpConstant},
		{cfg.factor, query.OpFactor},
		{cfg.strict, query.OpFactorStrict},
		{cfg.texture, query.OpTexture},
		{cfg.vertex, query.OpVertexColor},
		{cfg.anisotropy, query.OpAnisotropy},
		{cfg.lint, query.OpLint},
		{cfg.nodes, query.OpNodes},
	} {
		if f.set {
			ops = append(ops, f.op)
		}
	}

	switch len(ops) {
	case 0:
		return req, fmt.Errorf("no query given (use -search, -constant, -factor, -factor-strict, -texture, -vertex-color, -anisotropy, -lint or -nodes)")
	case 1:
	default:
		return req, fmt.Errorf("only one query may be given, got %d", len(ops))
	}
	req.Op = ops[0]
	if req.Op == query.OpVertexColor {
		req.Alpha = cfg.alpha
	}
	return req, nil
}

// run dispatches to server or query mode and returns the exit code.
func run(cfg config, stdout, stderr io.Writer) int {
	if cfg.serverMode {
		return runServer(cfg, stderr)
	}

	if cfg.graphFile == "" {
		printHelp(stderr, version)
		return exitUsage
	}

	if cfg.emitDOT {
		return exportDOT(cfg.graphFile, stdout, stderr)
	}

	format, err := report.ParseFormat(cfg.format)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	req, err := request(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	g, err := query.LoadFile(cfg.graphFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAbsent
	}

	qcfg := query.Config{MaxDepth: cfg.maxDepth}
	if cfg.verbose {
		qcfg.Trace = log.New(stderr, "", log.LstdFlags).Printf
	}
	runner := query.NewRunner(g, qcfg)

	res, err := runner.Run(req)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var ue *query.UsageError
		if errors.As(err, &ue) {
			return exitUsage
		}
		return exitAbsent
	}

	if cfg.verbose {
		stats := runner.CacheStats()
		fmt.Fprintf(stderr, "component=nodetrace.cli action=query material=%s op=%s ctx=%s found=%t cache_hits=%d cache_misses=%d\n",
			g.Name, req.Op, runner.Context().ID, res.Found, stats.Hits, stats.Misses)
	}

	if err := report.Render(stdout, format, res); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAbsent
	}
	return exitCode(res)
}

// exitCode maps a result to the process status: lint fails on any error
// diagnostic, every other query fails when nothing was found.
func exitCode(res *report.Result) int {
	if res.Query == string(query.OpLint) {
		for _, d := range res.Diagnostics {
			if d.Severity == "error" {
				return exitAbsent
			}
		}
		return exitFound
	}
	if !res.Found {
		return exitAbsent
	}
	return exitFound
}

// exportDOT prints a graph file, DOT or YAML, in the DOT dialect the loader reads.
func exportDOT(path string, stdout, stderr io.Writer) int {
	g, err := query.LoadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAbsent
	}
	fmt.Fprint(stdout, dot.Serialize(g))
	return exitFound
}

// runServer serves the materials in cfg.dir until interrupted.
func runServer(cfg config, stderr io.Writer) int {
	dir, err := resolveDir(cfg.dir)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAbsent
	}

	srv, err := web.NewServer(web.ServerConfig{
		Addr:     fmt.Sprintf("127.0.0.1:%d", cfg.port),
		Dir:      dir,
		MaxDepth: cfg.maxDepth,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAbsent
	}

	// Set up context with signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(stderr, "serving %s on 127.0.0.1:%d\n", dir, cfg.port)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAbsent
	}
	return exitFound
}
