package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/nvx-fleet/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(s.requireLevel(auth.RoleOperator))

			r.Route("/endpoints", func(r chi.Router) {
				r.Get("/", s.handleListEndpoints)
				r.Get("/stats", s.handleFleetStats)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetEndpoint)
					r.Get("/identity", s.handleGetIdentity)
					r.Get("/events", s.handleListEvents)
					r.With(s.requireLevel(auth.RoleAdministrator)).Post("/reaffirm", s.handleReaffirm)
				})
			})

			r.Get("/events", s.handleLatestEvents)

			r.Get("/sync", s.handleSyncAll)
			r.Get("/sync/{id}", s.handleSyncOne)

			r.Get("/ws", s.handleWebSocket)

			r.With(s.requireLevel(auth.RoleAdministrator)).Get("/audit", s.handleListAudit)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"endpoints": len(s.status.Snapshots()),
	})
}
