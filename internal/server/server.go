// Package server assembles the catalog's HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/medcatalog/internal/auth"
	"github.com/vyrodovalexey/medcatalog/internal/config"
	"github.com/vyrodovalexey/medcatalog/internal/handler"
	"github.com/vyrodovalexey/medcatalog/internal/middleware"
	"github.com/vyrodovalexey/medcatalog/internal/store"
)

// EventBus is the change feed the server fans out to WebSocket clients.
type EventBus interface {
	handler.Subscriber
	Close()
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
	config     *config.Config
	logger     *zap.Logger
	wsHandler  *handler.WebSocketHandler
	bus        EventBus
}

// New creates a new Server instance. bus should be the publisher the store
// was built with. authenticator may be nil, in which case mutating requests
// are not authenticated.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	catalogStore store.Store,
	bus EventBus,
	authenticator auth.Authenticator,
) *Server {
	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		logger: logger,
		bus:    bus,
	}

	s.setupRoutes(catalogStore)
	s.setupMiddleware(authenticator)
	s.setupHTTPServer()

	return s
}

// setupMiddleware wraps the router. Middlewares that must see every request,
// including unmatched and preflight ones, run outside the router; the ones that
// need the matched route run inside it.
func (s *Server) setupMiddleware(authenticator auth.Authenticator) {
	s.router.Use(mux.MiddlewareFunc(middleware.SpanRoute()))
	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}
	if authenticator != nil && authenticator.Method() != auth.AuthMethodNone {
		s.router.Use(mux.MiddlewareFunc(middleware.Auth(authenticator, s.logger)))
	}

	s.handler = middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Logging(s.logger),
		middleware.CORS(middleware.DefaultCORSConfig()),
	)(s.router)
}

func (s *Server) setupRoutes(catalogStore store.Store) {
	handler.NewRESTHandler(catalogStore, s.logger).RegisterRoutes(s.router)

	s.wsHandler = handler.NewWebSocketHandler(catalogStore, s.bus, s.logger)
	s.wsHandler.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown closes the WebSocket feeds, drains in-flight requests and closes
// the event bus.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.wsHandler.CloseAllConnections()

	err := s.httpServer.Shutdown(ctx)

	s.bus.Close()

	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
