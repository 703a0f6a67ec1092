// Package router sets up all HTTP routes and middleware chains for the
// newsdesk API. It organizes routes into public and admin groups with
// appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/handlers"
	"newsdesk/internal/middleware"
	"newsdesk/internal/session"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions   *session.Store
	Auth       *handlers.Auth
	Categories *handlers.Categories
	Articles   *handlers.Articles
	Resolve    *handlers.Resolve
	Media      *handlers.Media

	// SecureCookies controls the CSRF cookie's Secure flag.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check — no auth, no CSRF.
	r.Get("/healthz", healthHandler)

	// Public API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/resolve/*", d.Resolve.Handle)
		r.Get("/categories", d.Categories.List)
		r.Get("/articles", d.Articles.Search)
		r.Get("/articles/category/*", d.Articles.ListByCategory)
		r.Get("/articles/{slug}", d.Articles.GetBySlug)
	})

	// Admin API — session + CSRF. Login is rate limited against
	// credential stuffing.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))

		r.With(loginLimiter.Middleware).Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/2fa/verify", d.Auth.TwoFAVerify)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Post("/categories", d.Categories.Save)
			r.Delete("/categories/{id}", d.Categories.Delete)

			r.Post("/articles", d.Articles.Create)
			r.Put("/articles/{id}", d.Articles.Update)
			r.Delete("/articles/{id}", d.Articles.Delete)

			r.Post("/media", d.Media.Upload)
			r.Delete("/media/{id}", d.Media.Delete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
