// ABOUTME: HTTP viewer server exposing the family-tree pipeline behind a chi router.
// ABOUTME: Serves person listings plus rendered diagram and canvas documents for a loaded record collection.
package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/treeline-tools/treeline/family"
)

// Server serves a read-only view over one loaded record collection.
// The entity graph is built once at construction and shared by all
// requests; traversal, layout, and rendering run per request.
type Server struct {
	graph      *family.Graph
	router     chi.Router
	addr       string
	instanceID string
	cache      *responseCache
}

// ServerConfig holds the configuration for the viewer server.
type ServerConfig struct {
	Addr    string // listen address (default: "127.0.0.1:7353")
	Records []family.PersonRecord
}

// NewServer builds the entity graph from the configured records and
// sets up routing.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:7353"
	}
	if len(cfg.Records) == 0 {
		return nil, fmt.Errorf("no person records configured")
	}

	s := &Server{
		graph:      family.Build(cfg.Records),
		addr:       cfg.Addr,
		instanceID: uuid.New().String(),
		cache:      newResponseCache(5 * time.Minute),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/api/persons", s.handlePersons)
	r.Get("/api/tree", s.handleTree)
	r.Get("/api/canvas", s.handleCanvas)

	s.router = r
	return s, nil
}

// Handler returns the server's root handler for testing or embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe starts the HTTP server and blocks until it exits.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
