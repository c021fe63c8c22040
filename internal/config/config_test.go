package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Tracking.EphemeralBackend != EphemeralRedis {
		t.Errorf("expected redis backend by default, got %s", cfg.Tracking.EphemeralBackend)
	}
	if cfg.Tracking.SampleTTL != 72*time.Hour {
		t.Errorf("expected 72h sample ttl, got %v", cfg.Tracking.SampleTTL)
	}
	if cfg.Movement.Window != 20 {
		t.Errorf("expected window 20, got %d", cfg.Movement.Window)
	}
	if cfg.Movement.PollInterval != 30*time.Second {
		t.Errorf("expected 30s poll interval, got %v", cfg.Movement.PollInterval)
	}
	if cfg.Movement.StationaryMaxDistance != 50 {
		t.Errorf("expected 50m stationary threshold, got %v", cfg.Movement.StationaryMaxDistance)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EPHEMERAL_BACKEND", EphemeralFirebase)
	t.Setenv("NOTIFICATION_BACKEND", NotifyRabbitMQ)
	t.Setenv("RECONCILER_RETRIES", "5")
	t.Setenv("RECONCILER_CALL_TIMEOUT", "750ms")
	t.Setenv("MOVEMENT_ZIGZAG_MIN_ALTERNATION", "0.75")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ops.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Tracking.EphemeralBackend != EphemeralFirebase {
		t.Errorf("expected firebase backend, got %s", cfg.Tracking.EphemeralBackend)
	}
	if cfg.Tracking.NotificationBackend != NotifyRabbitMQ {
		t.Errorf("expected rabbitmq notifications, got %s", cfg.Tracking.NotificationBackend)
	}
	if cfg.Reconciler.Retries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.Reconciler.Retries)
	}
	if cfg.Reconciler.CallTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms timeout, got %v", cfg.Reconciler.CallTimeout)
	}
	if cfg.Movement.ZigzagMinAlternation != 0.75 {
		t.Errorf("expected 0.75 alternation, got %v", cfg.Movement.ZigzagMinAlternation)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RECONCILER_RETRIES", "many")
	t.Setenv("MOVEMENT_POLL_INTERVAL", "soon")

	cfg := Load()

	if cfg.Reconciler.Retries != 2 {
		t.Errorf("expected default retries, got %d", cfg.Reconciler.Retries)
	}
	if cfg.Movement.PollInterval != 30*time.Second {
		t.Errorf("expected default poll interval, got %v", cfg.Movement.PollInterval)
	}
}
