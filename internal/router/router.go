// Package router sets up all HTTP routes and middleware chains for the
// voicepad API. Routes are organised into public, asset and admin groups
// with their own middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"voicepad/internal/handlers"
	"voicepad/internal/middleware"
)

// Options carries the admin guard settings.
type Options struct {
	AdminUser         string
	AdminPasswordHash string
	// AllowOpenAdmin leaves admin routes open when no hash is set.
	AllowOpenAdmin bool
	// AdminLimiter, when set, rate-limits admin routes.
	AdminLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router. assets may be nil when
// the storage backend serves files itself.
func New(opts Options, public *handlers.Public, admin *handlers.Admin, assets *handlers.Assets) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONStatus(w, http.StatusNotFound, `{"error":"not found"}`)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONStatus(w, http.StatusMethodNotAllowed, `{"error":"method not allowed"}`)
	})

	r.Get("/health", healthHandler)

	// Public read API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", public.Categories)
		r.Get("/categories/{slug}/sounds", public.CategorySounds)
		r.Get("/sounds", public.SoundsByIDs)
		r.Get("/sounds/{slug}", public.Sound)
	})

	// Stored files for drivers without their own public endpoint.
	if assets != nil {
		r.Get("/storage/*", assets.Serve)
		r.Head("/storage/*", assets.Serve)
	}

	// Admin API: basic auth, optional rate limit, never cached.
	r.Route("/admin", func(r chi.Router) {
		if opts.AdminLimiter != nil {
			r.Use(opts.AdminLimiter.Middleware)
		}
		r.Use(middleware.NoStore)
		r.Use(middleware.BasicAuth(opts.AdminUser, opts.AdminPasswordHash, opts.AllowOpenAdmin))

		r.Get("/stats", admin.Stats)

		r.Route("/sounds", func(r chi.Router) {
			r.Post("/", admin.CreateSound)
			r.Post("/bulk", admin.BulkCreateSounds)
			r.Get("/{id}", admin.GetSound)
			r.Put("/{id}", admin.UpdateSound)
			r.Delete("/{id}", admin.DeleteSound)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", admin.ListCategories)
			r.Post("/", admin.CreateCategory)
			r.Put("/{id}", admin.UpdateCategory)
			r.Delete("/{id}", admin.DeleteCategory)
			r.Put("/{id}/order", admin.ReorderCategory)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONStatus(w, http.StatusOK, `{"status":"ok"}`)
}

func writeJSONStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
