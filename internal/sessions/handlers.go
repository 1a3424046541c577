package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
)

var tracer = otel.Tracer("sessions")

// Handler serves the session endpoints.
type Handler struct {
	manager *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{manager: m}
}

// Create handles POST /sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "sessions.create")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	id, state, err := h.manager.Create(ctx)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", "session limit reached", err, http.StatusServiceUnavailable, w)
		return
	}

	span.SetAttributes(attribute.String("session.id", id))
	span.SetStatus(codes.Ok, "")

	logger.Info("session created",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, SessionResponse{
		ID:    id,
		State: calculator.NewStateView(state),
	})
}

// Get handles GET /sessions/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "sessions.get",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	state, err := h.manager.Get(id)
	if err != nil {
		h.fail(w, r.WithContext(ctx), span, "get", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, SessionResponse{
		ID:    id,
		State: calculator.NewStateView(state),
	})
}

// Delete handles DELETE /sessions/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "sessions.delete",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	if err := h.manager.Delete(id); err != nil {
		h.fail(w, r.WithContext(ctx), span, "delete", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// Actions handles POST /sessions/{id}/actions. The whole batch is validated
// before any action is applied.
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "sessions.actions",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	var req ActionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "actions", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	actions := make([]calculator.Action, 0, len(req.Actions))
	for i, ar := range req.Actions {
		a, err := calculator.ParseAction(ar.Action, ar.Value)
		if err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "actions", fmt.Sprintf("invalid action at index %d", i), err, http.StatusBadRequest, w)
			return
		}
		actions = append(actions, a)
	}

	h.apply(w, r.WithContext(ctx), span, id, actions, nil)
}

// Keys handles POST /sessions/{id}/keys. Keys without a mapping are skipped
// and reported back in "ignored".
func (h *Handler) Keys(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "sessions.keys",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	var ignored []string
	actions := make([]calculator.Action, 0, len(req.Keys))
	for _, key := range req.Keys {
		a, ok := calculator.ActionForKey(key)
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		actions = append(actions, a)
	}

	h.apply(w, r.WithContext(ctx), span, id, actions, ignored)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, span trace.Span, id string, actions []calculator.Action, ignored []string) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	state, calcs, err := h.manager.Apply(ctx, id, actions...)
	if err != nil {
		h.fail(w, r, span, "apply", err)
		return
	}

	for _, a := range actions {
		actionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(a.Type))))
	}
	for _, c := range calcs {
		span.AddEvent("calculation.complete", trace.WithAttributes(
			attribute.String("expression", c.Expression),
			attribute.String("result", calculator.FormatNumber(c.Result)),
		))
	}
	span.SetAttributes(
		attribute.Int("session.actions", len(actions)),
		attribute.String("session.display", state.DisplayValue),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("session actions applied",
		zap.String("session_id", id),
		zap.Int("actions", len(actions)),
		zap.Int("calculations", len(calcs)),
		zap.Strings("ignored", ignored),
		zap.String("display", state.DisplayValue),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, SessionResponse{
		ID:           id,
		State:        calculator.NewStateView(state),
		Calculations: calculator.NewCalculationViews(calcs),
		Ignored:      ignored,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, opName string, err error) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	if errors.Is(err, ErrSessionNotFound) {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
		return
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, "failed to record history", err, http.StatusInternalServerError, w)
}
