// Package api provides the HTTP API server and handlers for the Librarian catalog.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins    []string
	ChatRatePerMinute int // 0 disables the chat limit
	AuthRatePerMinute int // 0 disables the auth limit
	Gatherer          prometheus.Gatherer
	Version           string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           Pinger
	services        *Services
	router          *chi.Mux
	api             huma.API
	chatLimiter     *RateLimiter
	authRateLimiter *RateLimiter
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store Pinger, services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if opts.ChatRatePerMinute > 0 {
		s.chatLimiter = NewRateLimiter(opts.ChatRatePerMinute, time.Minute, opts.ChatRatePerMinute)
	}
	if opts.AuthRatePerMinute > 0 {
		s.authRateLimiter = NewRateLimiter(opts.AuthRatePerMinute, time.Minute, opts.AuthRatePerMinute)
	}

	s.setupMiddleware(opts)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}
	humaConfig := huma.DefaultConfig("Librarian API", version)
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

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the rate limiters' cleanup goroutines.
func (s *Server) Close() {
	if s.chatLimiter != nil {
		s.chatLimiter.Stop()
	}
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if s.authRateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.authRateLimiter, "/api/v1/auth/", s.logger))
	}
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerHomeRoutes()
	s.registerBookRoutes()
	s.registerChatRoutes()
	s.registerAdminRoutes()
}
