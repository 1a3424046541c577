package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/add", h.binaryOp(Add))
		r.Post("/subtract", h.binaryOp(Subtract))
		r.Post("/multiply", h.binaryOp(Multiply))
		r.Post("/divide", h.binaryOp(Divide))
		r.Post("/replay", h.Replay)
	})
}
