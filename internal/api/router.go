/**
 * @description
 * This file sets up the HTTP router for the waitlist-service using the go-chi/chi router.
 * It applies middleware for logging, recovery, timeouts and CORS, and maps the
 * routes to their handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the router.
type RouterOptions struct {
	AllowedOrigins []string
	// AdminJWTSecret enables the operator routes when non-empty.
	AdminJWTSecret string
}

// NewRouter creates a new Chi router and registers the waitlist-service routes.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Waitlist service is healthy"))
	})

	r.Post("/subscribe", h.handleSubscribe)

	if opts.AdminJWTSecret != "" {
		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(opts.AdminJWTSecret))
			r.Get("/admin/stats", h.handleStats)
		})
	}

	return r
}
