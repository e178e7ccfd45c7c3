// Package server provides the HTTP server and routing for fintrack.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/fintrack/internal/config"
	"github.com/aristath/fintrack/internal/database"
	allocationhandlers "github.com/aristath/fintrack/internal/modules/allocation/handlers"
	emergencyfundhandlers "github.com/aristath/fintrack/internal/modules/emergencyfund/handlers"
	journalhandlers "github.com/aristath/fintrack/internal/modules/journal/handlers"
	"github.com/aristath/fintrack/internal/modules/portfolio"
	portfoliohandlers "github.com/aristath/fintrack/internal/modules/portfolio/handlers"
	rebalancinghandlers "github.com/aristath/fintrack/internal/modules/rebalancing/handlers"
	"github.com/aristath/fintrack/internal/modules/reports"
	reportshandlers "github.com/aristath/fintrack/internal/modules/reports/handlers"
	riskhandlers "github.com/aristath/fintrack/internal/modules/risk/handlers"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Config holds server configuration
type Config struct {
	Log     zerolog.Logger
	Config  *config.Config
	CacheDB *database.DB   // nil with the memory cache backend
	Caches  reports.Caches // report caches, instrumented by the server
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	metrics        *Metrics
	reports        *reports.Service
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	metrics := NewMetrics()

	caches := reports.Caches{
		Allocation:  metrics.InstrumentCache("allocation", cfg.Caches.Allocation),
		Performance: metrics.InstrumentCache("performance", cfg.Caches.Performance),
	}

	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		cfg:     cfg.Config,
		metrics: metrics,
		reports: reports.NewService(caches, reports.Defaults{
			RiskFreeRate:   cfg.Config.RiskFreeRate,
			DriftThreshold: cfg.Config.DriftThreshold,
		}, cfg.Log),
		systemHandlers: NewSystemHandlers(cfg.CacheDB, cfg.Config.CacheBackend, cfg.Log),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging and metrics
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metrics.Middleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

		riskhandlers.NewHandler(riskhandlers.Defaults{
			RiskFreeRate:  s.cfg.RiskFreeRate,
			MaxAllocation: s.cfg.MaxAllocation,
		}, s.log).RegisterRoutes(r)

		allocationhandlers.NewHandler(s.log).RegisterRoutes(r)
		rebalancinghandlers.NewHandler(s.cfg.DriftThreshold, s.log).RegisterRoutes(r)

		limits := portfolio.DefaultLimits()
		limits.MaxSinglePosition = s.cfg.MaxAllocation
		portfoliohandlers.NewHandler(limits, s.log).RegisterRoutes(r)

		emergencyfundhandlers.NewHandler(s.log).RegisterRoutes(r)
		journalhandlers.NewHandler(s.log).RegisterRoutes(r)
		reportshandlers.NewHandler(s.reports, s.log).RegisterRoutes(r)
	})
}

// ServeHTTP dispatches to the router
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
