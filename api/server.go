/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLog: Structured request logging via logrus
  4. CORS:       Cross-origin requests for the upload frontend

SECURITY NOTE:
  No authentication middleware here; auth and role checks belong to the
  deployment's gateway layer.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/salesrecon: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLog(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", h.ParseSheet)
		r.Post("/reconcile", h.ReconcileSheet)
		r.Post("/apply", h.ApplySheet)

		r.Route("/boutiques/{id}", func(r chi.Router) {
			r.Get("/roster", h.GetRoster)
			r.Put("/roster", h.PutRoster)
			r.Get("/ledger/{period}", h.GetLedger)
			r.Get("/runs/{period}", h.ListRuns)
		})

		r.Post("/periods/lock", h.LockPeriod)
	})

	return r
}

// requestLog logs one line per request with method, path, status, and
// duration.
func requestLog(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
				"request":  middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
