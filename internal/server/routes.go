package server

import "github.com/go-chi/chi/v5"

// SetupRoutes registers the lineage API routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Get("/healthz", h.Health)

	router.Route("/api", func(r chi.Router) {
		r.Get("/lineage/{graph}/{scope}/{guid}", h.Lineage)
		r.Get("/graphs", h.ListGraphs)
		r.Get("/graphs/{graph}", h.ExportGraph)
		r.Get("/graphs/{graph}/stats", h.GraphStats)
		r.Post("/graphs/{graph}/dump", h.DumpGraph)
	})
}
