package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Recorder receives completed calculations, typically to persist history.
type Recorder interface {
	Record(ctx context.Context, c Calculation) error
}

// Handler serves the stateless calculator endpoints.
type Handler struct {
	history Recorder
}

// NewHandler returns a Handler that records calculations to history. A nil
// history disables recording.
func NewHandler(history Recorder) *Handler {
	return &Handler{history: history}
}

// ---------------------------------------------------------------------------
// Handlers: binary operations
// ---------------------------------------------------------------------------

// binaryOp handles POST /calculator/{add,subtract,multiply,divide}. Division
// by zero is not an error: the result is rendered as Infinity or NaN.
func (h *Handler) binaryOp(op Operator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.handleBinaryOp(w, r, op)
	}
}

func (h *Handler) handleBinaryOp(w http.ResponseWriter, r *http.Request, op Operator) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	opName := op.Name()

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.Float64("calculator.operand.a", req.A),
		attribute.Float64("calculator.operand.b", req.B),
	)

	start := time.Now()
	result := Apply(op, req.A, req.B)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	calc := Calculation{
		Expression: expression(req.A, op, req.B),
		Result:     result,
		Operator:   op,
	}

	if err := h.record(ctx, calc); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "failed to record history", err, http.StatusInternalServerError, w)
		return
	}

	observeCalculation(ctx, calc, elapsed)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("result", FormatNumber(result)),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Float64("a", req.A),
		zap.Float64("b", req.B),
		zap.String("result", FormatNumber(result)),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, CalcResponse{
		Operation:  opName,
		A:          req.A,
		B:          req.B,
		Expression: calc.Expression,
		Result:     FormatNumber(result),
	})
}

// ---------------------------------------------------------------------------
// Handler: key replay (nested spans)
// ---------------------------------------------------------------------------

// Replay handles POST /calculator/replay. It feeds a key sequence through a
// fresh engine, one child span per key, and returns the final state together
// with every calculation completed along the way.
func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.replay",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req ReplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("replay.keys_count", len(req.Keys)))

	var calcs []Calculation
	engine := NewEngine(WithCalculationHandler(func(c Calculation) {
		calcs = append(calcs, c)
	}))

	start := time.Now()
	var ignored []string

	for i, key := range req.Keys {
		_, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.replay.key.%d", i),
			trace.WithAttributes(
				attribute.Int("replay.key.index", i),
				attribute.String("replay.key", key),
			),
		)

		action, ok := ActionForKey(key)
		if !ok {
			ignored = append(ignored, key)
			keySpan.AddEvent("key.ignored")
			keySpan.End()
			continue
		}

		before := len(calcs)
		engine.Dispatch(action)
		snap := engine.Snapshot()

		keySpan.SetAttributes(
			attribute.String("replay.action", action.String()),
			attribute.String("replay.display", snap.DisplayValue),
		)
		if len(calcs) > before {
			keySpan.AddEvent("calculation.complete", trace.WithAttributes(
				attribute.String("expression", calcs[len(calcs)-1].Expression),
				attribute.String("result", FormatNumber(calcs[len(calcs)-1].Result)),
			))
		}
		keySpan.SetStatus(codes.Ok, "")
		keySpan.End()
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	keysCounter.Add(ctx, int64(len(req.Keys)))

	for _, c := range calcs {
		if err := h.record(ctx, c); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "replay", "failed to record history", err, http.StatusInternalServerError, w)
			return
		}
		observeCalculation(ctx, c, elapsed)
	}

	final := engine.Snapshot()
	span.AddEvent("replay.complete", trace.WithAttributes(
		attribute.String("display", final.DisplayValue),
		attribute.Int("calculations", len(calcs)),
		attribute.Int("ignored_keys", len(ignored)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("replay completed",
		zap.Int("keys", len(req.Keys)),
		zap.Int("ignored", len(ignored)),
		zap.Int("calculations", len(calcs)),
		zap.String("display", final.DisplayValue),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, ReplayResponse{
		State:        NewStateView(final),
		Calculations: NewCalculationViews(calcs),
		Ignored:      ignored,
	})
}

func (h *Handler) record(ctx context.Context, c Calculation) error {
	if h.history == nil {
		return nil
	}
	return h.history.Record(ctx, c)
}

func observeCalculation(ctx context.Context, c Calculation, elapsedMS float64) {
	attrs := metric.WithAttributes(attribute.String("operation", c.Operator.Name()))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsedMS, attrs)
	if !math.IsNaN(c.Result) && !math.IsInf(c.Result, 0) {
		resultGauge.Record(ctx, c.Result, attrs)
	}
}
