// Package gateway serves the pagelens services over HTTP with gin.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/pagelens/internal/logger"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second

	// multipartOverhead is allowed on top of the upload limit for form framing.
	multipartOverhead = 1 << 20
)

// Config configures the HTTP gateway.
type Config struct {
	// Addr is the listen address (default 0.0.0.0:3001).
	Addr string

	// RateLimitRPS and RateLimitBurst bound requests per client IP.
	// A zero RPS disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxUploadBytes is the largest accepted PDF. Bodies beyond it plus
	// multipart framing are rejected with 413.
	MaxUploadBytes int64
}

// Server is the HTTP gateway.
type Server struct {
	ports  *Ports
	config Config
	engine *gin.Engine
}

// NewServer builds the gin engine and registers routes.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:3001"
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}

	s := &Server{
		ports:  ports,
		config: cfg,
		engine: gin.New(),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware())
	if s.config.RateLimitRPS > 0 {
		r.Use(newIPRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst).middleware())
	}

	r.GET("/health", s.handleHealth)
	r.GET("/stats", s.handleStats)
	r.POST("/chat", s.handleChat)

	ingest := []gin.HandlerFunc{s.handleIngest}
	if s.config.MaxUploadBytes > 0 {
		ingest = append([]gin.HandlerFunc{bodyLimitMiddleware(s.config.MaxUploadBytes + multipartOverhead)}, ingest...)
	}
	r.POST("/ingest", ingest...)

	if s.ports.Maintenance != nil {
		r.POST("/clear", s.handleClear)
		r.POST("/reindex", s.handleReindex)
	}
	if s.ports.Document != nil {
		r.GET("/pages/:doc/:page", s.handlePage)
	}
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("gateway shutdown: %v", err)
		}
	}()

	logger.Infow("gateway listening", "addr", s.config.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
