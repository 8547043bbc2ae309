// Package api provides the HTTP API server and handlers for the StreamView application.
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
	"github.com/streamviewapp/streamview-server/internal/search"
	"github.com/streamviewapp/streamview-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	search          *search.SearchIndex
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *RateLimiter
}

// Options configures the HTTP server.
type Options struct {
	Store       *store.Store
	Search      *search.SearchIndex
	Services    *Services
	CORSOrigins []string
	// LoginRateLimit is the number of login attempts allowed per minute per IP.
	LoginRateLimit int
	Logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	humaConfig := huma.DefaultConfig("StreamView API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	loginRate := opts.LoginRateLimit
	if loginRate <= 0 {
		loginRate = 5
	}

	s := &Server{
		store:           opts.Store,
		search:          opts.Search,
		services:        opts.Services,
		router:          router,
		api:             api,
		logger:          opts.Logger,
		authRateLimiter: NewRateLimiter(loginRate, time.Minute, loginRate),
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerContentRoutes()
	s.registerChannelRoutes()
	s.registerEPGRoutes()
	s.registerViewingRoutes()
	s.registerStatsRoutes()
	s.registerRecommendationRoutes()
	s.registerStreamingRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
