/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  unique id per request for tracing
  2. Recoverer:  panic recovery (500 instead of crash)
  3. CORS:       cross-origin requests for the app frontend
  4. zerolog:    structured request logging

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/budgetd: server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(requestLogger(h.Log))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/budget", func(r chi.Router) {
			r.Get("/", h.GetBudget)
			r.Put("/", h.SetBudget)
			r.Post("/recalculate", h.Recalculate)
			r.Post("/tick", h.Tick)
		})

		r.Route("/session", func(r chi.Router) {
			r.Post("/create", h.StartCreate)
			r.Post("/edit/{id}", h.StartEdit)
			r.Put("/amount", h.UpdateAmount)
			r.Put("/comment", h.UpdateComment)
			r.Post("/commit", h.Commit)
			r.Post("/cancel", h.CancelSession)
		})

		r.Route("/spends", func(r chi.Router) {
			r.Get("/", h.ListSpends)
			r.Delete("/{id}", h.RemoveSpend)
			r.Post("/undo", h.UndoRemove)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
