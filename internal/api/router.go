package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Krushna2656/agentic-honeypot/internal/api/handlers"
	apimiddleware "github.com/Krushna2656/agentic-honeypot/internal/api/middleware"
	"github.com/Krushna2656/agentic-honeypot/internal/config"
	"github.com/Krushna2656/agentic-honeypot/internal/infrastructure/cache"
	"github.com/Krushna2656/agentic-honeypot/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/", r.handlers.Health.Root)
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.APIKeyAuth(r.config.Auth.APIKey))

		api.Post("/honeypot", r.handlers.Honeypot.Process)
		api.Get("/patterns", r.handlers.Patterns.Get)

		api.Route("/sessions", func(s chi.Router) {
			s.Get("/{id}", r.handlers.Sessions.Get)
			s.Get("/{id}/evidence", r.handlers.Sessions.GetEvidence)
			s.Get("/{id}/decisions/{turn}", r.handlers.Sessions.GetDecision)
		})

		api.Get("/clusters/{id}/sessions", r.handlers.Sessions.ByCluster)
	})

	return router
}
