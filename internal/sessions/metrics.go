package sessions

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// activeSessions is scraped from /metrics.
var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "calculator_sessions_active",
	Help: "Number of live calculator sessions.",
})

var (
	actionsCounter metric.Int64Counter
	errorCounter   metric.Int64Counter
)

// InitMetrics registers the session instruments. Call it once at startup,
// after observability.InitMetrics.
func InitMetrics() error {
	meter := otel.Meter("sessions")

	var err error

	actionsCounter, err = meter.Int64Counter("sessions.actions.total",
		metric.WithDescription("Actions applied to calculator sessions"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return fmt.Errorf("creating actions counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("sessions.errors.total",
		metric.WithDescription("Total number of session errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}
