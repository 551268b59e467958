// Package server provides the HTTP API for LaTeX resume generation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonathan/talentsync/internal/compiler"
	"github.com/jonathan/talentsync/internal/config"
	"github.com/jonathan/talentsync/internal/db"
	"github.com/jonathan/talentsync/internal/observability"
	"github.com/jonathan/talentsync/internal/rendering"
	"github.com/jonathan/talentsync/internal/server/ratelimit"
)

// DocumentStore records generated documents. *db.DB implements it.
type DocumentStore interface {
	SaveDocument(ctx context.Context, input *db.DocumentCreateInput) (*db.Document, error)
	MarkCompiled(ctx context.Context, id uuid.UUID, pageCount int) error
	GetDocument(ctx context.Context, id uuid.UUID) (*db.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]db.Document, error)
}

// Options wires the server's collaborators. Store, Compiler and Metrics may be nil.
type Options struct {
	Config    config.ServerConfig
	Generator *rendering.Generator
	Compiler  compiler.PDFCompiler
	Store     DocumentStore
	RateLimit *ratelimit.Config
	Metrics   *observability.Metrics
	Logger    *log.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg         config.ServerConfig
	httpServer  *http.Server
	generator   *rendering.Generator
	compiler    compiler.PDFCompiler
	store       DocumentStore
	rateLimiter *ratelimit.Limiter
	metrics     *observability.Metrics
	logger      *log.Logger
}

// New creates a new server instance
func New(opts Options) *Server {
	s := &Server{
		cfg:       opts.Config,
		generator: opts.Generator,
		compiler:  opts.Compiler,
		store:     opts.Store,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	if s.generator == nil {
		s.generator = rendering.NewGenerator(nil)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.cfg.MaxBodyBytes <= 0 {
		s.cfg.MaxBodyBytes = 1 << 20
	}
	if s.cfg.ShutdownTimeout <= 0 {
		s.cfg.ShutdownTimeout = 10 * time.Second
	}

	rl := opts.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rl)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /api/templates", s.handleTemplates)
	mux.HandleFunc("POST /api/resume/latex", s.handleGenerateLatex)
	mux.HandleFunc("POST /api/resume/pdf", s.handleGeneratePDF)
	if s.cfg.DocumentHistory {
		mux.HandleFunc("GET /api/documents", s.handleListDocuments)
		mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
		mux.HandleFunc("GET /api/documents/{id}/resume.tex", s.handleDocumentTex)
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.withLogging(s.withMetrics(s.withCORS(s.withRateLimit(mux)))),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for up to the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
