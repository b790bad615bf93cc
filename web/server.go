// ABOUTME: Read-only nodetrace HTTP API: list materials and run backward queries behind a chi router.
// ABOUTME: Every request gets its own export context and texture cache; graphs are shared read-only.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/2389-research/nodetrace/dot"
	"github.com/2389-research/nodetrace/query"
	"github.com/2389-research/nodetrace/report"
)

// Server is the nodetrace HTTP server.
type Server struct {
	store    *MaterialStore
	router   chi.Router
	addr     string
	maxDepth int
}

// ServerConfig holds the configuration for the web server.
type ServerConfig struct {
	Addr     string // listen address (default: "127.0.0.1:2390")
	Dir      string // directory of material graph files
	MaxDepth int    // traversal depth guard; 0 keeps the engine default
}

// NewServer creates a Server and loads every material in cfg.Dir.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:2390"
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("Dir must not be empty")
	}

	store := NewMaterialStore(cfg.Dir)
	if err := store.LoadAll(); err != nil {
		return nil, fmt.Errorf("loading materials: %w", err)
	}

	s := &Server{
		store:    store,
		addr:     cfg.Addr,
		maxDepth: cfg.MaxDepth,
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured address with
// timeouts against slow clients. It returns nil once ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("component=nodetrace.web action=listen addr=%s materials=%d", s.addr, len(s.store.List()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(webRequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/reload", s.handleReload)

	r.Route("/materials", func(r chi.Router) {
		r.Get("/", s.handleMaterialList)

		r.Route("/{material}", func(r chi.Router) {
			r.Get("/", s.handleMaterial)
			r.Get("/dot", s.handleMaterialDOT)
			r.Get("/nodes", s.handleOp(query.OpNodes))
			r.Get("/lint", s.handleOp(query.OpLint))
			r.Get("/nodes/{node}/anisotropy", s.handleOp(query.OpAnisotropy))
			r.Get("/nodes/{node}/inputs/{input}/{query}", s.handleInputQuery)
		})
	})

	return r
}

// handleHealth returns a JSON health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "materials": len(s.store.List())})
}

// handleReload rescans the material directory.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.store.LoadAll(); err != nil {
		log.Printf("component=nodetrace.web action=reload err=%v", err)
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	writeJSON(w, http.StatusOK, s.store.List())
}

// handleMaterialList returns all materials as a JSON array.
func (s *Server) handleMaterialList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleMaterial(w http.ResponseWriter, r *http.Request) {
	name := param(r, "material")
	_, meta, ok := s.store.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("material %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleMaterialDOT returns the material as normalized DOT.
func (s *Server) handleMaterialDOT(w http.ResponseWriter, r *http.Request) {
	name := param(r, "material")
	g, _, ok := s.store.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("material %q not found", name))
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, dot.Serialize(g)); err != nil {
		log.Printf("component=nodetrace.web action=write_dot material=%s err=%v", name, err)
	}
}

// handleOp serves the queries that need no input port.
func (s *Server) handleOp(op query.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.run(w, r, query.Request{Op: op, Node: param(r, "node")})
	}
}

// handleInputQuery serves constant, factor, factor_strict, texture, search
// and vertex_color queries on one input.
func (s *Server) handleInputQuery(w http.ResponseWriter, r *http.Request) {
	op, err := query.ParseOp(param(r, "query"))
	if err != nil || !op.NeedsInput() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown input query %q", param(r, "query")))
		return
	}
	q := r.URL.Query()
	s.run(w, r, query.Request{
		Op:    op,
		Node:  param(r, "node"),
		Input: param(r, "input"),
		Alpha: q.Get("alpha"),
		Kind:  q.Get("kind"),
		Name:  q.Get("name"),
	})
}

// run executes req on a fresh runner so per-request caches never mix.
func (s *Server) run(w http.ResponseWriter, r *http.Request, req query.Request) {
	name := param(r, "material")
	g, _, ok := s.store.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("material %q not found", name))
		return
	}

	format := report.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = report.ParseFormat(f); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	runner := query.NewRunner(g, query.Config{MaxDepth: s.maxDepth})
	res, err := runner.Run(req)
	if err != nil {
		var nf *query.NotFoundError
		var ue *query.UsageError
		switch {
		case errors.As(err, &nf):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.As(err, &ue):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	log.Printf("component=nodetrace.web action=query material=%s op=%s node=%q input=%q found=%t ctx=%s request_id=%s",
		name, req.Op, req.Node, req.Input, res.Found, runner.Context().ID, middleware.GetReqID(r.Context()))

	switch format {
	case report.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	case report.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	if err := report.Render(w, format, res); err != nil {
		log.Printf("component=nodetrace.web action=render err=%v", err)
	}
}

// param returns a decoded URL parameter. Qualified node names arrive with
// an escaped slash ("Lighting%2FMix").
func param(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("component=nodetrace.web action=encode err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
