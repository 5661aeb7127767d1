package config

import (
	"net/http"
	"testing"
	"time"
)

func TestValidationStatus(t *testing.T) {
	if got := (ServerConfig{}).ValidationStatus(); got != http.StatusUnauthorized {
		t.Errorf("default validation status = %d, want 401", got)
	}
	if got := (ServerConfig{ValidationErrorStatus: http.StatusBadRequest}).ValidationStatus(); got != http.StatusBadRequest {
		t.Errorf("configured validation status = %d, want 400", got)
	}
}

func TestRequestsPerSecond(t *testing.T) {
	if got := (ServerConfig{}).RequestsPerSecond(); got != DefaultRateLimit {
		t.Errorf("default rate = %v, want %v", got, DefaultRateLimit)
	}
	if got := (ServerConfig{RateLimit: 5}).RequestsPerSecond(); got != 5 {
		t.Errorf("configured rate = %v, want 5", got)
	}
}

func TestObservabilityValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown level should fail validation")
	}

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative slow query threshold should fail validation")
	}

	cfg = DefaultObservabilityConfig()
	cfg.ServiceName = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty service name should fail validation")
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		env, level, want string
	}{
		{"production", "", "info"},
		{"development", "", "debug"},
		{"production", "warn", "warn"},
		{"local", "error", "error"},
	}
	for _, tt := range tests {
		cfg := &ObservabilityConfig{Environment: tt.env, Logging: LoggingConfig{Level: tt.level}}
		if got := cfg.GetLogLevel(); got != tt.want {
			t.Errorf("GetLogLevel(env=%s, level=%q) = %q, want %q", tt.env, tt.level, got, tt.want)
		}
	}
}

func TestHealthCheckEnabled(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	if !cfg.HealthCheckEnabled("database") || !cfg.HealthCheckEnabled("redis") {
		t.Error("default checks should include database and redis")
	}
	if cfg.HealthCheckEnabled("queue") {
		t.Error("unlisted check should be disabled")
	}

	cfg.HealthChecks.Enabled = false
	if cfg.HealthCheckEnabled("database") {
		t.Error("checks should be off when health checks are disabled")
	}
}
