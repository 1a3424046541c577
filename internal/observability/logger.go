package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is the process-wide logger. It discards everything until InitLogger
// runs, so packages can log unconditionally in tests.
var Logger = zap.NewNop()

// InitLogger installs a production JSON logger at the given level
// ("debug", "info", "warn", "error").
func InitLogger(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger enriched with trace_id and span_id
// fields from the active OTel span in ctx.
//
// ctx itself is attached as a zap.Any("context", ctx) field. The otelzap
// bridge treats any field holding a context.Context as the context for
// log.Logger.Emit, which fills in the native TraceID/SpanID of the exported
// OTLP record. Without it the bridge emits with context.Background() and the
// trace correlation in the log backend is lost.
//
// The plain trace_id / span_id strings keep stdout JSON logs greppable.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
