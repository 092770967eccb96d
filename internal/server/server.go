// Package server provides the HTTP server setup and wiring.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pendergraft/trustscore/internal/config"
	insightsDomain "github.com/pendergraft/trustscore/internal/insights/domain"
	insightsTransport "github.com/pendergraft/trustscore/internal/insights/transport"
	"github.com/pendergraft/trustscore/internal/middleware/logging"
	"github.com/pendergraft/trustscore/internal/middleware/ratelimit"
	"github.com/pendergraft/trustscore/internal/middleware/security"
	"github.com/pendergraft/trustscore/internal/observability/metrics"
)

// Server is the HTTP server
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	router  *chi.Mux
	limiter *ratelimit.RateLimiter

	insightsSvc insightsDomain.Service
}

// New creates a new server around an insights service built with
// BuildService.
func New(cfg *config.Config, svc insightsDomain.Service, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		router:      chi.NewRouter(),
		insightsSvc: svc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) setupMiddleware() {
	// RealIP rewrites RemoteAddr, so it must run before anything keyed on
	// the client address.
	if s.cfg.Server.TrustProxy {
		s.router.Use(middleware.RealIP)
	}

	limit, limiter := ratelimit.Middleware(ratelimit.Config{
		Enabled:        s.cfg.RateLimit.Enabled,
		RequestsPerMin: s.cfg.RateLimit.RequestsPerMin,
		BurstSize:      s.cfg.RateLimit.BurstSize,
		CleanupMinutes: s.cfg.RateLimit.CleanupMinutes,
	})
	s.limiter = limiter
	s.router.Use(limit)

	s.router.Use(security.Filter(s.cfg.Server.FilterScanners, s.logger))
	s.router.Use(middleware.RequestID)
	s.router.Use(logging.Middleware(s.logger))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleHealth)

	if metrics.Enabled() {
		s.router.Handle("/metrics", metrics.Handler())
	}

	insightsHandler := insightsTransport.NewHandler(s.insightsSvc, s.cfg.Server.MaxBodyBytes)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.cfg.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(time.Duration(s.cfg.Server.RequestTimeout) * time.Second))
		}
		insightsHandler.RegisterRoutes(r)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
