package history

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

var tracer = otel.Tracer("history")

// ListResponse is the JSON response for GET /history.
type ListResponse struct {
	Records []Record `json:"records"`
}

// Handler serves the history endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the history endpoints under /history.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.List)
		r.Delete("/", h.Clear)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /history?limit=n.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "history.list")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			observability.RecordError(ctx, span, logger, errorCounter, "list", "invalid limit", fmt.Errorf("limit %q", raw), http.StatusBadRequest, w)
			return
		}
		limit = n
	}

	records, err := h.svc.List(ctx, limit)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "list", "failed to list history", err, http.StatusInternalServerError, w)
		return
	}

	span.SetAttributes(attribute.Int("history.records", len(records)))
	span.SetStatus(codes.Ok, "")

	handlers.WriteJSON(w, http.StatusOK, ListResponse{Records: records})
}

// Delete handles DELETE /history/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "history.delete",
		trace.WithAttributes(attribute.String("history.id", id)),
	)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	if err := h.svc.Delete(ctx, id); err != nil {
		status, msg := http.StatusInternalServerError, "failed to delete history record"
		if errors.Is(err, ErrNotFound) {
			status, msg = http.StatusNotFound, "history record not found"
		}
		observability.RecordError(ctx, span, logger, errorCounter, "delete", msg, err, status, w)
		return
	}

	logger.Info("history record deleted",
		zap.String("id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /history.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "history.clear")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	if err := h.svc.Clear(ctx); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "clear", "failed to clear history", err, http.StatusInternalServerError, w)
		return
	}

	logger.Info("history cleared",
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}
