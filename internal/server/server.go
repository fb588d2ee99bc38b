// Package server provides the HTTP and gRPC servers for the mission client.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/config"
	apierrors "github.com/vaibhav-sd/MissionControlProject/internal/errors"
	"github.com/vaibhav-sd/MissionControlProject/internal/handler"
	"github.com/vaibhav-sd/MissionControlProject/internal/health"
	"github.com/vaibhav-sd/MissionControlProject/internal/metrics"
	"github.com/vaibhav-sd/MissionControlProject/internal/middleware"
)

// Session is the part of the client session the server depends on.
type Session interface {
	handler.MissionSession
	Monitor() *health.ReachabilityMonitor
}

// Server represents the HTTP server.
type Server struct {
	router       *mux.Router
	httpServer   *http.Server
	handlers     *handler.Handlers
	monitor      *health.ReachabilityMonitor
	errorHandler *apierrors.Handler
	logger       *zap.Logger
	cfg          *config.Config
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config, session Session, logger *zap.Logger) *Server {
	router := mux.NewRouter()
	errorHandler := apierrors.NewHandler(logger)
	handlers := handler.NewHandlers(session, errorHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		router:       router,
		httpServer:   httpServer,
		handlers:     handlers,
		monitor:      session.Monitor(),
		errorHandler: errorHandler,
		logger:       logger,
		cfg:          cfg,
	}
}

// SetupRoutes configures all HTTP routes.
func (s *Server) SetupRoutes() {
	middlewareChain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger, s.errorHandler),
		middleware.RequestID,
		middleware.Logging(s.logger),
		middleware.CORS(s.cfg.Server.AllowedOrigins),
	}

	if s.cfg.RateLimiter.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.cfg.RateLimiter.RequestsPerSecond,
			s.cfg.RateLimiter.BurstSize,
			s.errorHandler,
			s.logger,
		).Exempt("/health", "/ready")
		middlewareChain = append(middlewareChain, rateLimiter.Limit)
	}

	if s.cfg.Metrics.Enabled {
		middlewareChain = append(middlewareChain, metrics.MetricsMiddleware(metrics.NewMetrics()))
	}

	chain := middleware.Chain(middlewareChain...)
	s.router.Use(func(next http.Handler) http.Handler {
		return chain(next)
	})

	// Health check endpoints
	s.router.HandleFunc("/health", health.LivenessHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.monitor.ReadinessHandler).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/missions", s.handlers.ListMissions).Methods(http.MethodGet)
	v1.HandleFunc("/missions", s.handlers.SubmitMission).Methods(http.MethodPost)
	v1.HandleFunc("/missions/{mission_id}", s.handlers.GetMission).Methods(http.MethodGet)

	v1.HandleFunc("/creation", s.handlers.GetCreation).Methods(http.MethodGet)
	v1.HandleFunc("/creation", s.handlers.DismissCreation).Methods(http.MethodDelete)

	v1.HandleFunc("/refresh", s.handlers.Refresh).Methods(http.MethodPost)
	v1.HandleFunc("/reachability", s.handlers.GetReachability).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.errorHandler.WriteErrorResponse(w, http.StatusNotFound, "INVALID_REQUEST", "endpoint not found", r.Header.Get("X-Request-ID"))
	})

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.errorHandler.WriteErrorResponse(w, http.StatusMethodNotAllowed, "INVALID_REQUEST", "method not allowed", r.Header.Get("X-Request-ID"))
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.Int("port", s.cfg.Server.Port),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// GetHandler returns the http.Handler for the server.
func (s *Server) GetHandler() http.Handler {
	return s.router
}
