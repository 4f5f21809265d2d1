// Package router sets up all HTTP routes and middleware chains for the
// marketplace. It organizes routes into public, advisory and admin groups
// with appropriate middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"testifyhub/internal/handlers"
	"testifyhub/internal/middleware"
	"testifyhub/internal/render"
	"testifyhub/internal/session"
	"testifyhub/web"
)

// Handlers bundles the handler groups the router dispatches to.
type Handlers struct {
	Marketplace *handlers.Marketplace
	Advisory    *handlers.Advisory
	Categories  *handlers.Categories
	Auth        *handlers.Auth
}

// Options controls the security-related parts of the middleware stack.
type Options struct {
	SecureCookies bool // mark session and CSRF cookies Secure (HTTPS only)
	AdminOpen     bool // serve the admin area without login
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter guards the endpoints that start AI
// requests; polling is not limited.
func New(sessionStore *session.Store, renderer *render.Renderer, limiter *middleware.RateLimiter, h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", staticHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))
		r.Use(middleware.LoadSession(sessionStore))

		// Marketplace
		r.Get("/", h.Marketplace.List)
		r.Route("/templates/{slug}", func(r chi.Router) {
			r.Get("/", h.Marketplace.Detail)
			r.Post("/clone", h.Marketplace.Clone)
			r.With(limiter.Middleware).Post("/analysis", h.Advisory.Analyze)
			r.Get("/jobs/{id}", h.Advisory.AnalysisPoll)
		})

		// Test case generator
		r.Route("/generate", func(r chi.Router) {
			r.Get("/", h.Advisory.GeneratePage)
			r.With(limiter.Middleware).Post("/", h.Advisory.Generate)
			r.Get("/jobs/{id}", h.Advisory.GeneratePoll)
		})

		// Admin area
		r.Route("/admin", func(r chi.Router) {
			r.Get("/login", h.Auth.LoginPage)
			r.Post("/login", h.Auth.LoginSubmit)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(opts.AdminOpen))

				r.Get("/", redirectTo(handlers.CategoriesPath))
				r.Route("/categories", func(r chi.Router) {
					r.Get("/", h.Categories.Page)
					r.Post("/new", h.Categories.New)
					r.Post("/{id}/select", h.Categories.Select)
					r.Post("/cancel", h.Categories.Cancel)
					r.Post("/subcategories/add", h.Categories.AddSubcategory)
					r.Post("/subcategories/{index}/remove", h.Categories.RemoveSubcategory)
					r.Post("/save", h.Categories.Save)
					r.Post("/delete", h.Categories.Delete)
				})
			})
		})

		r.NotFound(handlers.NotFound(renderer))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// staticHandler serves the embedded web/static tree under /static/.
func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("static assets missing from binary: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
