package main

import (
	"context"
	"errors"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/history"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/sessions"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts the OTLP trace, metric and log pipelines. The returned
// shutdown flushes all of them.
func initTelemetry(ctx context.Context) (shutdownFunc, error) {
	var shutdowns []shutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	for _, start := range []func(context.Context) (func(context.Context) error, error){
		observability.InitTracing,
		observability.InitMetrics,
		observability.InitLogging,
	} {
		fn, err := start(ctx)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}
		shutdowns = append(shutdowns, fn)
	}

	return shutdown, nil
}

// initMetrics registers the application-specific metric instruments. Add new
// domain InitMetrics calls here as the project grows.
func initMetrics() error {
	for _, initFn := range []func() error{
		calculator.InitMetrics,
		history.InitMetrics,
		sessions.InitMetrics,
	} {
		if err := initFn(); err != nil {
			return err
		}
	}
	return nil
}

func newHistoryStore(cfg config.Config) (history.Store, error) {
	if cfg.HistoryFile == "" {
		return history.NewMemoryStore(cfg.HistoryLimit), nil
	}
	return history.NewFileStore(cfg.HistoryFile, cfg.HistoryLimit)
}
