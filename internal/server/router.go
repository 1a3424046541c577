package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/history"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/sessions"
)

// Deps are the domain services the router exposes. A nil History disables
// recording and the /history routes; a nil Sessions disables /sessions.
type Deps struct {
	History  *history.Service
	Sessions *sessions.Manager
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	var recorder calculator.Recorder
	if deps.History != nil {
		recorder = deps.History
		history.NewHandler(deps.History).RegisterRoutes(r)
	}
	calculator.NewHandler(recorder).RegisterRoutes(r)

	if deps.Sessions != nil {
		sessions.NewHandler(deps.Sessions).RegisterRoutes(r)
	}

	return r
}
