package history

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	recordsCounter metric.Int64Counter
	errorCounter   metric.Int64Counter
)

// InitMetrics registers the history instruments. Call it once at startup,
// after observability.InitMetrics.
func InitMetrics() error {
	meter := otel.Meter("history")

	var err error

	recordsCounter, err = meter.Int64Counter("history.records.created",
		metric.WithDescription("Calculations written to history"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return fmt.Errorf("creating records counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("history.errors.total",
		metric.WithDescription("Total number of history errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}
