// Package server serves the render pipeline over HTTP.
//
// # Routes
//
//   - POST /download: form fields titolo, autore and pseudocodifica; replies
//     with the workbook as an attachment
//   - POST /api/render: JSON body, replies with one artifact
//   - POST /api/tree: JSON body, replies with the block tree
//   - GET /api/formats: the supported output formats
//   - GET /healthz: liveness probe
//
// Errors are JSON objects carrying the code from pkg/errors. Validation
// failures map to 400, structural pseudocode errors to 422.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
)

// Server handles HTTP requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router

	maxUploadBytes int64
	actionLabel    string
	strict         bool
	readTimeout    time.Duration
	writeTimeout   time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithMaxUploadBytes bounds request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithActionLabel sets the action label used when a request has none.
func WithActionLabel(label string) Option {
	return func(s *Server) { s.actionLabel = label }
}

// WithStrict makes strict parsing the default for requests that do not
// choose.
func WithStrict(strict bool) Option {
	return func(s *Server) { s.strict = strict }
}

// WithTimeouts sets the read and write timeouts of [Server.ListenAndServe].
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = read
		s.writeTimeout = write
	}
}

// New creates a server. A nil logger discards request logs.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:         runner,
		logger:         logger.WithPrefix("http"),
		maxUploadBytes: pipeline.DefaultMaxCodeBytes,
		readTimeout:    30 * time.Second,
		writeTimeout:   60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/download", s.handleDownload)
	r.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Post("/render", s.handleRender)
		r.Post("/tree", s.handleTree)
	})
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close() // Force close if graceful shutdown fails
			return err
		}
		s.logger.Info("stopped")
		return nil
	}
}
