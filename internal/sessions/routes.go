package sessions

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the session endpoints under /sessions.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Post("/actions", h.Actions)
			r.Post("/keys", h.Keys)
		})
	})
}
