package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"surfari/boardwalk/internal/api"
	"surfari/boardwalk/internal/middleware"
)

// NewRouter builds the HTTP mux: global middleware first, then the route
// groups. Prometheus stays on its own mux in main so scrapes skip the
// rate limiter and metrics middleware.
func NewRouter(deps *api.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"https://surfari.io",
			"https://www.surfari.io",
			"http://localhost:5173",
		},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimitMiddleware)

	RegisterAPIRoutes(r, deps)

	return r
}
