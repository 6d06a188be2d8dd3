// Package api provides the HTTP API server and handlers for the FocusFlow application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/focusflowapp/focusflow-server/internal/http/response"
	"github.com/focusflowapp/focusflow-server/internal/ratelimit"
	"github.com/focusflowapp/focusflow-server/internal/service"
	"github.com/focusflowapp/focusflow-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	focusService   *service.FocusService
	analyzeLimiter *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, focusService *service.FocusService, analyzeLimiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		store:          store,
		focusService:   focusService,
		analyzeLimiter: analyzeLimiter,
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", identityHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(identityMiddleware)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/focus", func(r chi.Router) {
			r.Use(s.requireUser)

			r.Post("/start", s.handleStartSession)
			r.Put("/{id}/pause", s.handlePauseSession)
			r.Put("/{id}/resume", s.handleResumeSession)
			r.Put("/{id}/end", s.handleEndSession)
			r.Put("/{id}/cancel", s.handleCancelSession)

			r.With(s.limitAnalyze).Post("/{id}/analyze", s.handleAnalyzeSession)

			r.Get("/sessions", s.handleListSessions)
			r.Get("/stats", s.handleSessionStats)
			r.Get("/active", s.handleActiveSession)
		})
	})
}

// limitAnalyze throttles analyze calls per user so a single client
// cannot drain the provider quota.
func (s *Server) limitAnalyze(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.analyzeLimiter.Allow(getUserID(r.Context())) {
			response.Error(w, http.StatusTooManyRequests, "analysis rate limit exceeded, try again later", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealthCheck reports server and store health.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Health(); err != nil {
		response.Error(w, http.StatusServiceUnavailable, "store unavailable", s.logger)
		return
	}
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}
