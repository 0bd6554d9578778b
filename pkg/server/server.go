package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/matzehuels/simpleindex/pkg/simple"
)

// Upstream is the index the proxy serves from. *pypi.Client implements it.
type Upstream interface {
	FetchIndex(ctx context.Context, refresh bool) (*simple.ProjectIndex, error)
	FetchProject(ctx context.Context, name string, refresh bool) (*simple.ProjectDetails, error)
}

// Options configures a [Server].
type Options struct {
	Addr    string // listen address, e.g. "127.0.0.1:8080"
	BaseURL string // public URL of the proxy index; links stay relative when empty
	Logger  *log.Logger
}

// Server is the proxy's HTTP server.
type Server struct {
	httpServer *http.Server
	upstream   Upstream
	baseURL    string
	logger     *log.Logger
}

// New creates a server that proxies up.
func New(up Upstream, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		upstream: up,
		baseURL:  opts.BaseURL,
		logger:   logger,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           h2c.NewHandler(s.routes(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start listens and serves until [Server.Shutdown] is called.
func (s *Server) Start() error {
	s.logger.Info("proxy listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Get("/simple", func(w http.ResponseWriter, r *http.Request) {
		redirect(w, r, "/simple/")
	})
	r.Get("/simple/", s.handleIndex)
	r.Get("/simple/{project}", s.handleProject)
	r.Get("/simple/{project}/", s.handleProject)
	return r
}
