// Package server provides the HTTP server for the webhook API
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/api/middleware"
	"github.com/helioshq/helios-webhooks/internal/api/rest"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/messaging"
	"github.com/helioshq/helios-webhooks/internal/ratelimit"
	"github.com/helioshq/helios-webhooks/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Auth         middleware.AuthConfig
}

// Server represents the API server
type Server struct {
	config     Config
	store      store.Store
	processor  rest.InboundProcessor
	publisher  messaging.Publisher
	clock      adapter.Clock
	guard      ratelimit.Guard
	httpServer *http.Server
}

// New creates a new API server
func New(
	cfg Config,
	st store.Store,
	processor rest.InboundProcessor,
	publisher messaging.Publisher,
	clock adapter.Clock,
	guard ratelimit.Guard,
) *Server {
	return &Server{
		config:    cfg,
		store:     st,
		processor: processor,
		publisher: publisher,
		clock:     clock,
		guard:     guard,
	}
}

// Start starts the API server and blocks until it is shut down
func (s *Server) Start() error {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	handler := rest.NewHandler(s.processor, s.store, s.publisher, s.clock)
	rest.SetupRoutes(router, handler, s.config.Auth, s.guard)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server", zap.String("address", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
