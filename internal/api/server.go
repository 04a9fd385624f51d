// Package api provides the HTTP API server and handlers for the ContactDock application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/contactdock/contactdock-server/internal/search"
	"github.com/contactdock/contactdock-server/internal/store"
	"github.com/contactdock/contactdock-server/internal/validation"
)

// Options configures the HTTP server surface.
type Options struct {
	// CORSOrigins is the allowed origin list. Empty means allow all.
	CORSOrigins []string

	// SyncRatePerMinute and SyncBurst throttle POST /api/v1/auth/sync
	// per client IP.
	SyncRatePerMinute int
	SyncBurst         int

	// SearchIndex is optional; when nil the health check reports the
	// search component as degraded.
	SearchIndex *search.SearchIndex
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	services        *Services
	search          *search.SearchIndex
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	validator       *validation.Validator
	syncRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	ratePerMinute := opts.SyncRatePerMinute
	if ratePerMinute <= 0 {
		ratePerMinute = 20
	}
	burst := opts.SyncBurst
	if burst <= 0 {
		burst = 5
	}

	s := &Server{
		store:           store,
		services:        services,
		search:          opts.SearchIndex,
		router:          chi.NewRouter(),
		logger:          logger,
		validator:       validation.New(),
		syncRateLimiter: NewRateLimiter(ratePerMinute, time.Minute, burst),
	}

	s.setupMiddleware(opts.CORSOrigins)

	humaConfig := huma.DefaultConfig("ContactDock API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerContactRoutes()
	s.registerTagRoutes()
	s.registerStatsRoutes()
	s.registerImportRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.syncRateLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Use(s.syncRateLimitMiddleware)
}
