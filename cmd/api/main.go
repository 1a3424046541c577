package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/history"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/sessions"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics and log export
	if cfg.TelemetryEnabled {
		shutdown, err := initTelemetry(ctx)
		if err != nil {
			observability.Logger.Fatal("telemetry init failed", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	if err := initMetrics(); err != nil {
		observability.Logger.Fatal("metrics init failed", zap.Error(err))
	}

	// History and sessions
	store, err := newHistoryStore(cfg)
	if err != nil {
		observability.Logger.Fatal("history store init failed", zap.Error(err))
	}
	historySvc := history.NewService(store)
	manager := sessions.NewManager(historySvc, cfg.SessionLimit)
	go manager.Run(ctx, time.Minute, cfg.SessionIdleTimeout)

	// Router
	router := server.NewRouter(server.Deps{
		History:  historySvc,
		Sessions: manager,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("history_file", cfg.HistoryFile),
			zap.Bool("telemetry", cfg.TelemetryEnabled),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Logger.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(ctx, srv, cfg.ShutdownTimeout)
}

func waitForShutdown(ctx context.Context, srv *http.Server, timeout time.Duration) {

	<-ctx.Done()

	observability.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.Logger.Error("server shutdown failed", zap.Error(err))
	}
}
