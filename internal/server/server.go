// Package server exposes reconciliation sessions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/extratos/verifier/internal/logging"
	"github.com/extratos/verifier/internal/session"
)

// SampleSize is the number of movements echoed after an upload.
const SampleSize = 5

// maxUploadMemory bounds the multipart form kept in memory.
const maxUploadMemory = 32 << 20

// Config holds HTTP server settings.
type Config struct {
	Port           int
	AllowedOrigins []string // empty or "*" allows any origin
	Encoding       string   // statement text encoding, see source.DecodeText
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{Port: 8080, Encoding: "auto"}
}

// Server is the HTTP API.
type Server struct {
	config  Config
	router  *gin.Engine
	service *session.Service
	store   *Store
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now, used to stamp reports.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithStore shares an existing session store.
func WithStore(store *Store) Option {
	return func(s *Server) { s.store = store }
}

// New creates a server. A nil logger discards output.
func New(cfg Config, svc *session.Service, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		config:  cfg,
		router:  gin.New(),
		service: svc,
		store:   NewStore(),
		logger:  logging.WithSystem(logger, "server"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router.MaxMultipartMemory = maxUploadMemory

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

// Store returns the session store.
func (s *Server) Store() *Store { return s.store }

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestLogger(s.logger, "/health"))
	s.router.Use(cors.New(corsConfig(s.config.AllowedOrigins)))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id", s.getSession)
	api.DELETE("/sessions/:id", s.deleteSession)
	api.POST("/sessions/:id/statements", s.addStatements)
	api.POST("/sessions/:id/expected/grid", s.prefillExpected)
	api.POST("/sessions/:id/reconcile", s.reconcile)
	api.GET("/sessions/:id/report", s.report)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
