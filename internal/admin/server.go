// Package admin exposes the operational HTTP surface: liveness and
// Prometheus metrics.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gitea.jw6.us/james/coursebot/internal/metrics"
	"gitea.jw6.us/james/coursebot/internal/store"
)

// NewRouter wires the admin routes.
func NewRouter(st *store.Store, prometheusEnabled bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := st.HealthCheck(req.Context()); err != nil {
			http.Error(w, "unhealthy: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if prometheusEnabled {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	return r
}
