package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if !cfg.DemoMode() {
		t.Fatalf("expected demo mode when no database url configured")
	}
	if cfg.SessionTTLMinutes <= 0 {
		t.Fatalf("expected positive session ttl")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SESSION_SECRET", "secret")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected override database url")
	}
	if cfg.DemoMode() {
		t.Fatalf("expected persistent mode with database url set")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.SessionSecret != "secret" {
		t.Fatalf("expected override secret")
	}
}
