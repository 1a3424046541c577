package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is read from the environment. OTEL_* variables are left to the
// OpenTelemetry SDK.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	TelemetryEnabled   bool
	HistoryFile        string // empty keeps history in memory
	HistoryLimit       int
	SessionLimit       int
	SessionIdleTimeout time.Duration
	ShutdownTimeout    time.Duration
}

func Default() Config {
	return Config{
		HTTPAddr:           ":8080",
		LogLevel:           "info",
		TelemetryEnabled:   true,
		HistoryLimit:       10,
		SessionLimit:       1000,
		SessionIdleTimeout: 30 * time.Minute,
		ShutdownTimeout:    5 * time.Second,
	}
}

// Load applies environment overrides to Default.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var err error

	if v, ok := lookup("HTTP_ADDR"); ok && v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("HISTORY_FILE"); ok {
		cfg.HistoryFile = v
	}
	if v, ok := lookup("TELEMETRY_ENABLED"); ok && v != "" {
		if cfg.TelemetryEnabled, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("TELEMETRY_ENABLED: %w", err)
		}
	}
	if cfg.HistoryLimit, err = positiveInt(lookup, "HISTORY_LIMIT", cfg.HistoryLimit); err != nil {
		return Config{}, err
	}
	if cfg.SessionLimit, err = positiveInt(lookup, "SESSION_LIMIT", cfg.SessionLimit); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTimeout, err = positiveDuration(lookup, "SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = positiveDuration(lookup, "SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func positiveInt(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}

func positiveDuration(lookup func(string) (string, bool), key string, def time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}
