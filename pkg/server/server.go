// Package server exposes the frame transform over HTTP.
//
// Routes:
//
//	GET  /healthz      liveness probe
//	POST /v1/shuffle   raw GIF body, options in the query string
//	                   (seed, speed, loop, ratio, distance); or an
//	                   application/cbor envelope request
//	POST /v1/inspect   raw GIF body, JSON section summary
//
// Output buffers come from a shared [buffer.Limited] allocator, so the
// total size of in-flight results is bounded by the memory limit.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gifshuffle/pkg/buffer"
	"github.com/matzehuels/gifshuffle/pkg/pipeline"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
)

// Config configures a Server.
type Config struct {
	Addr string

	// MaxBodyBytes caps request bodies. Zero means 32 MiB.
	MaxBodyBytes int64

	// MemoryLimit caps the bytes held by in-flight outputs. Zero means
	// 256 MiB.
	MemoryLimit int

	// Workers caps concurrent transforms. Zero means 4.
	Workers int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Defaults supplies the options a request does not set. Its Seed is
	// used when the request has none. The zero value means a full shuffle.
	Defaults shuffle.Config
}

func (c *Config) setDefaults() {
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 32 << 20
	}
	if c.MemoryLimit <= 0 {
		c.MemoryLimit = 256 << 20
	}
	if c.Workers <= 0 {
		c.Workers = pipeline.DefaultWorkers
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Defaults.SwapRatio == 0 && c.Defaults.SwapDistance == 0 {
		c.Defaults.SwapRatio = shuffle.DefaultSwapRatio
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	alloc  *buffer.Limited

	ready chan struct{}
	addr  net.Addr
}

// New creates a server running transforms through runner.
func New(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if logger == nil {
		logger = log.Default()
	}
	cfg.setDefaults()
	return &Server{
		cfg:    cfg,
		runner: runner,
		logger: logger,
		alloc:  buffer.NewLimited(cfg.MemoryLimit),
		ready:  make(chan struct{}),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Throttle(s.cfg.Workers))
		r.Post("/shuffle", s.handleShuffle)
		r.Post("/inspect", s.handleInspect)
	})
	return r
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. Only valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Serve listens on the configured address until ctx is canceled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.addr = ln.Addr()
	close(s.ready)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("listening", "addr", s.addr.String())

	done := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			done <- err
		}
		close(done)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
	case err := <-done:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}
